package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reelforge/internal/config"
	"reelforge/internal/httpapi"
	"reelforge/internal/ingest"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/pkg/shutdown"
	"reelforge/internal/queue"
	"reelforge/internal/render"
	"reelforge/internal/storage"
)

func main() {
	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", "info"),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "reelforge-api",
		AddSource:   config.BoolEnv("LOG_SOURCE", false),
	})

	log.Info("starting reelforge API", "version", "0.1.0")

	httpPort := config.Env("HTTP_PORT", "8080")
	scratchRoot := config.Env("SCRATCH_ROOT", "/tmp/reelforge-scratch")
	ffmpegBin := config.Env("FFMPEG_BIN", "ffmpeg")
	ffprobeBin := config.Env("FFPROBE_BIN", "ffprobe")
	maxActivePerOwner := config.IntEnv("MAX_ACTIVE_JOBS_PER_OWNER", 2)
	evictionInterval := config.DurationSecondsEnv("JOBSTORE_EVICTION_INTERVAL_SECONDS", 5*time.Minute)
	evictionRetention := config.DurationSecondsEnv("JOBSTORE_RETENTION_SECONDS", 24*time.Hour)
	stallThreshold := config.IntEnv("SUPERVISOR_STALL_THRESHOLD", 2)
	breakerCooldown := config.DurationSecondsEnv("SUPERVISOR_BREAKER_COOLDOWN_SECONDS", 60*time.Second)
	snapshotTTL := config.DurationSecondsEnv("JOB_SNAPSHOT_TTL_SECONDS", 24*time.Hour)

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// PostgreSQL backs the job history sink only; its absence never blocks
	// job admission or rendering.
	var pool *pgxpool.Pool
	if dbURL := config.Env("DATABASE_URL", ""); dbURL != "" {
		log.Info("connecting to PostgreSQL")
		var err error
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			log.LogFatal("failed to connect to PostgreSQL", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.LogFatal("failed to ping PostgreSQL", err)
		}
		shutdownMgr.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		log.Info("PostgreSQL connected")
	} else {
		log.Info("DATABASE_URL not set, job history sink disabled")
	}

	// Redis backs the job store's KV cache tier only; its absence leaves the
	// in-memory table as the sole source of truth.
	var rdb *redis.Client
	if redisAddr := config.Env("REDIS_ADDR", ""); redisAddr != "" {
		log.Info("connecting to Redis")
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.LogFatal("failed to ping Redis", err)
		}
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})
		log.Info("Redis connected")
	} else {
		log.Info("REDIS_ADDR not set, KV cache tier disabled")
	}

	log.Info("initializing storage provider")
	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	if err := os.MkdirAll(scratchRoot, 0o755); err != nil {
		log.LogFatal("failed to create scratch directory", err)
	}

	ingestor := ingest.New(ingest.Config{
		ScratchRoot:   scratchRoot,
		AllowInsecure: config.BoolEnv("INGEST_ALLOW_INSECURE", false),
		ProbeBin:      ffprobeBin,
		Log:           log,
	})

	engine, err := render.New(render.Config{
		Binary:      ffmpegBin,
		ScratchRoot: scratchRoot,
		Log:         log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render engine", err)
	}

	store := jobstore.New(jobstore.Config{
		RDB:         rdb,
		SP:          sp,
		SnapshotTTL: snapshotTTL,
		Log:         log,
	})

	history := jobstore.NewHistoryRecorder(pool, log)
	if err := history.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure job_history schema, history sink disabled for this run", "error", err.Error())
	}

	state := queue.NewState()
	supervisor := queue.NewSupervisor(state, store, stallThreshold, breakerCooldown, log)
	fairness := queue.NewFairnessLimiter(store, maxActivePerOwner)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	shutdownMgr.Register("worker", func(ctx context.Context) error {
		cancelWorker()
		return nil
	})
	worker := queue.NewWorker(workerCtx, state, store, engine, history, supervisor, log)

	evictorCtx, cancelEvictor := context.WithCancel(ctx)
	shutdownMgr.Register("jobstore-evictor", func(ctx context.Context) error {
		cancelEvictor()
		return nil
	})
	go jobstore.RunEvictionSweep(evictorCtx, store, evictionInterval, evictionRetention, log)

	handler := httpapi.New(httpapi.Deps{
		Store:      store,
		State:      state,
		Worker:     worker,
		Supervisor: supervisor,
		Fairness:   fairness,
		Ingestor:   ingestor,
		RDB:        rdb,
		Pool:       pool,
		SP:         sp,
		Log:        log,
	})
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr, "port", httpPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
