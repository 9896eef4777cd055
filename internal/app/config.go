package app

import (
	"strings"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/jobs/worker"
	"github.com/yungbote/admatch-backend/internal/platform/envutil"
)

type Config struct {
	LogMode        string
	Port           string
	AllowedOrigins []string

	RedisAddr    string
	RedisChannel string

	// WorkerEnabled lets an API-only replica serve HTTP without claiming jobs.
	WorkerEnabled bool
	Queues        []worker.QueueConfig
}

func ConfigFromEnv() Config {
	var origins []string
	for _, o := range strings.Split(envutil.Str("ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		LogMode:        envutil.Str("LOG_MODE", "development"),
		Port:           envutil.Str("PORT", "8080"),
		AllowedOrigins: origins,
		RedisAddr:      envutil.Str("REDIS_ADDR", ""),
		RedisChannel:   envutil.Str("REDIS_EVENT_CHANNEL", "pipeline"),
		WorkerEnabled:  envutil.Bool("WORKER_ENABLED", true),
		// Scan gets the widest pool: its work is dominated by waiting on the
		// vision API rather than on local CPU or the database.
		Queues: []worker.QueueConfig{
			{Name: payload.QueueIngest, Concurrency: envutil.Int("QUEUE_INGEST_CONCURRENCY", 5)},
			{Name: payload.QueueScan, Concurrency: envutil.Int("QUEUE_SCAN_CONCURRENCY", 10)},
			{Name: payload.QueuePersist, Concurrency: envutil.Int("QUEUE_PERSIST_CONCURRENCY", 5)},
			{Name: payload.QueueMatch, Concurrency: envutil.Int("QUEUE_MATCH_CONCURRENCY", 5)},
		},
	}
}
