// cmd/activity-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/audit"
	commonaws "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/server"
	"mergington-activities/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activity server",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Catalog ---
	seed := registry.DefaultCatalog()
	if cfg.Catalog.SeedPath != "" {
		seed, err = registry.LoadCatalog(cfg.Catalog.SeedPath)
		if err != nil {
			zapLog.Fatal("catalog load failed", zap.String("path", cfg.Catalog.SeedPath), zap.Error(err))
		}
	}
	reg := registry.New(seed)
	zapLog.Info("Catalog loaded", zap.Int("activities", len(seed)))

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		TracingEnabled: cfg.Observability.TracingEnabled,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	var (
		recorders audit.Multi
		checks    []func(context.Context) error
	)

	// --- Init PostgreSQL with retry ---
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pgRecorder := audit.NewPostgresRecorder(pg.DB)
		if err := pgRecorder.Migrate(ctx); err != nil {
			zapLog.Fatal("audit migration failed", zap.Error(err))
		}
		recorders = append(recorders, pgRecorder)
		checks = append(checks, pg.Ping)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis with retry ---
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()

		recorders = append(recorders, audit.NewRedisRecorder(rdb.Client, cfg.Database.Redis.Stream))
		checks = append(checks, rdb.Ping)
		zapLog.Info("Redis connected successfully", zap.String("stream", cfg.Database.Redis.Stream))
	}

	// --- Init AWS notification clients ---
	var notifier notify.Notifier
	if cfg.Notifications.SNS.Enabled || cfg.Notifications.Email.Enabled {
		awsCfg, err := commonaws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.SNS.Enabled {
			recorders = append(recorders, audit.NewSNSRecorder(commonaws.NewSNSClient(awsCfg), cfg.Notifications.SNS.TopicARN))
			zapLog.Info("SNS enrollment publishing enabled", zap.String("topic", cfg.Notifications.SNS.TopicARN))
		}
		if cfg.Notifications.Email.Enabled {
			notifier = notify.NewEmailNotifier(commonaws.NewSESClient(awsCfg), cfg.Notifications.Email.FromEmail)
			zapLog.Info("Signup confirmation emails enabled", zap.String("from", cfg.Notifications.Email.FromEmail))
		}
	}

	var recorder audit.Recorder = audit.Nop{}
	if len(recorders) > 0 {
		recorder = recorders
	}

	srv := server.New(server.Deps{
		Config:        cfg.Server,
		Registry:      reg,
		Recorder:      recorder,
		Notifier:      notifier,
		Observability: obs,
		Logger:        log,
		Ready: func(ctx context.Context) error {
			var errs []error
			for _, check := range checks {
				errs = append(errs, check(ctx))
			}
			return errors.Join(errs...)
		},
	})

	if err := srv.Run(ctx); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}

	zapLog.Info("Activity server stopped gracefully")
}
