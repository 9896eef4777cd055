// Package app is the composition root: every client, repo, service, pipeline
// and handler is constructed here and handed its dependencies explicitly.
package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/db"
	"github.com/yungbote/admatch-backend/internal/events"
	"github.com/yungbote/admatch-backend/internal/http/handlers"
	"github.com/yungbote/admatch-backend/internal/jobs/pipeline/match_item"
	"github.com/yungbote/admatch-backend/internal/jobs/pipeline/process_files"
	"github.com/yungbote/admatch-backend/internal/jobs/pipeline/scan_page"
	"github.com/yungbote/admatch-backend/internal/jobs/pipeline/store_page"
	"github.com/yungbote/admatch-backend/internal/jobs/pipeline/store_pdf"
	"github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/jobs/worker"
	"github.com/yungbote/admatch-backend/internal/platform/gcp"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/platform/openai"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/server"
	"github.com/yungbote/admatch-backend/internal/services"
)

type App struct {
	Cfg    Config
	Log    *logger.Logger
	DB     *gorm.DB
	Bus    events.Bus
	Router *gin.Engine
	Worker *worker.Worker
}

func Build(cfg Config, log *logger.Logger) (*App, error) {
	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, err
	}
	gdb := pg.DB()

	bucket, err := gcp.NewBucketService(log, gcp.BucketConfigFromEnv())
	if err != nil {
		return nil, err
	}
	oracle, err := openai.NewClient(log)
	if err != nil {
		return nil, err
	}

	var bus events.Bus = events.NoopBus{}
	if cfg.RedisAddr != "" {
		bus, err = events.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, err
		}
	}

	// Repos
	retailerRepo := repos.NewRetailerRepo(gdb, log)
	adRepo := repos.NewAdvertisementRepo(gdb, log)
	pageRepo := repos.NewPageRepo(gdb, log)
	itemRepo := repos.NewItemRepo(gdb, log)
	catalogRepo := repos.NewCatalogRepo(gdb, log)
	suggestionRepo := repos.NewSuggestionRepo(gdb, log)
	jobRunRepo := repos.NewJobRunRepo(gdb, log)

	// Services
	notifier := services.NewPipelineNotifier(log, bus)
	jobService := services.NewJobService(log, jobRunRepo)
	adService := services.NewAdvertisementService(
		log, gdb, retailerRepo, adRepo, itemRepo, suggestionRepo, jobService, bucket)

	// Pipelines
	registry := runtime.NewRegistry()
	pipelines := []runtime.Handler{
		process_files.New(gdb, log, adRepo, jobService),
		scan_page.New(log, oracle, jobService),
		store_pdf.New(log, bucket),
		store_page.New(gdb, log, adRepo, pageRepo, itemRepo, jobService, bucket, notifier),
		match_item.New(gdb, log, itemRepo, catalogRepo, suggestionRepo),
	}
	for _, p := range pipelines {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	jobWorker := worker.NewWorker(gdb, log, jobRunRepo, registry, notifier, cfg.Queues)

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:       cfg.AllowedOrigins,
		HealthHandler:        handlers.NewHealthHandler(),
		AdvertisementHandler: handlers.NewAdvertisementHandler(log, adService),
		ItemHandler:          handlers.NewItemHandler(adService),
		JobHandler:           handlers.NewJobHandler(jobService),
	})

	return &App{
		Cfg:    cfg,
		Log:    log,
		DB:     gdb,
		Bus:    bus,
		Router: router,
		Worker: jobWorker,
	}, nil
}
