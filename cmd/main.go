package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/admatch-backend/internal/app"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
)

func main() {
	// Best-effort: in containers the environment is injected directly.
	_ = godotenv.Load()

	cfg := app.ConfigFromEnv()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("App init failed", "error", err)
	}
	defer func() {
		if err := a.Bus.Close(); err != nil {
			log.Warn("Event bus close failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WorkerEnabled {
		a.Worker.Start(ctx)
	} else {
		log.Info("Worker pools disabled", "env", "WORKER_ENABLED")
	}

	log.Info("Listening", "port", cfg.Port)
	if err := a.Router.Run(":" + cfg.Port); err != nil {
		log.Fatal("HTTP server failed", "error", err)
	}
}
