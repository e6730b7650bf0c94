package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/registra-app/registra-backend/api/routes"
	"github.com/registra-app/registra-backend/internal/cron"
	"github.com/registra-app/registra-backend/internal/license"
	"github.com/registra-app/registra-backend/internal/retention"
	"github.com/registra-app/registra-backend/internal/school"
	"github.com/registra-app/registra-backend/internal/students"
	"github.com/registra-app/registra-backend/pkg/config"
	"github.com/registra-app/registra-backend/pkg/db"
	"github.com/registra-app/registra-backend/pkg/logger"
	"github.com/registra-app/registra-backend/pkg/metrics"
	"github.com/registra-app/registra-backend/pkg/migrate"
	"github.com/registra-app/registra-backend/pkg/redis"
	"github.com/registra-app/registra-backend/pkg/storage/files"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunStartup(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to prepare schema", err)
		os.Exit(1)
	}

	fileStore, err := files.NewStore(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(ctx, "failed to prepare uploads directory", err)
		os.Exit(1)
	}

	verifier, err := license.DefaultVerifier()
	if err != nil {
		logg.Error(ctx, "failed to load license verifier", err)
		os.Exit(1)
	}

	licenseStore := license.NewStore(dbClient.DB())
	schoolRepo := school.NewRepository(dbClient.DB())
	studentRepo := students.NewRepository()
	licenseService := license.NewService(licenseStore, verifier, schoolRepo)

	registry := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(registry)

	runLock, closeLock, err := buildRunLock(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to build retention lock", err)
		os.Exit(1)
	}
	defer closeLock()

	enforcer, err := retention.NewEnforcer(retention.EnforcerParams{
		Logger:   logg,
		DB:       dbClient,
		Licenses: licenseStore,
		Students: studentRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to build expiry enforcer", err)
		os.Exit(1)
	}

	purger, err := retention.NewPurger(retention.PurgerParams{
		Logger:   logg,
		DB:       dbClient,
		Licenses: licenseStore,
		Students: studentRepo,
		Files:    fileStore,
		Metrics:  cronMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to build purge engine", err)
		os.Exit(1)
	}

	runner, err := retention.NewRunner(retention.RunnerParams{
		Logger:   logg,
		Lock:     runLock,
		Enforcer: enforcer,
		Purger:   purger,
	})
	if err != nil {
		logg.Error(ctx, "failed to build retention runner", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewRetentionJob(cron.RetentionJobParams{
		Logger: logg,
		Runner: runner,
	})
	if err != nil {
		logg.Error(ctx, "failed to build retention job", err)
		os.Exit(1)
	}

	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:       logg,
		Jobs:         []cron.Job{retentionJob},
		Metrics:      cronMetrics,
		RunAtHour:    cfg.Retention.RunAtHour,
		Interval:     cfg.Retention.Interval,
		StartupDelay: cfg.Retention.StartupDelay,
	})
	if err != nil {
		logg.Error(ctx, "failed to build scheduler", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "scheduler stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Licenses: licenseService,
			Purge:    runner,
			Registry: registry,
		}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}

// buildRunLock picks the retention lock: Redis when configured (server
// installs that may run several processes), in-process mutex otherwise.
func buildRunLock(ctx context.Context, cfg *config.Config, logg *logger.Logger) (retention.Lock, func(), error) {
	if !cfg.Redis.Enabled() {
		return retention.NewMutexLock(), func() {}, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, nil, err
	}
	lock, err := retention.NewRedisLock(redisClient, redisClient.LockKey("retention"), 0)
	if err != nil {
		redisClient.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}
	return lock, closeFn, nil
}
