package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/axle/pkg/api"
	"github.com/platinummonkey/axle/pkg/cache"
	"github.com/platinummonkey/axle/pkg/config"
	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/history"
	"github.com/platinummonkey/axle/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithFields(map[string]interface{}{
		"source":  cfg.Corpus.SourceType,
		"history": cfg.History.Driver,
	}).Info("starting axle daemon")

	ctx := context.Background()

	// OpenTelemetry (no-op unless enabled)
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	// Run history store
	store, err := history.Open(cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		logger.WithError(err).Error("failed to open run history store")
		os.Exit(1)
	}
	defer store.Close()

	// Document outcome cache: Redis when configured, in-process otherwise
	var outcomeCache cache.Cache
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		if cfg.Cache.RedisAddr != "" {
			redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword,
				cfg.Cache.RedisDB, cfg.Cache.TTL)
			if err != nil {
				logger.WithError(err).Warn("redis unreachable, falling back to in-process cache")
				outcomeCache = cache.NewMemoryCache(cfg.Cache.MemoryEntries, cfg.Cache.TTL)
			} else {
				outcomeCache = redisCache
				redisClient = redisCache.Client()
				logger.WithField("addr", cfg.Cache.RedisAddr).Info("using redis outcome cache")
			}
		} else {
			outcomeCache = cache.NewMemoryCache(cfg.Cache.MemoryEntries, cfg.Cache.TTL)
		}
		defer outcomeCache.Close()
	}

	// Corpus source
	var source corpus.Source
	switch cfg.Corpus.SourceType {
	case "s3":
		source, err = corpus.NewS3Source(ctx, corpus.S3Config{
			Bucket:       cfg.Corpus.S3Bucket,
			Prefix:       cfg.Corpus.S3Prefix,
			Region:       cfg.Corpus.S3Region,
			Endpoint:     cfg.Corpus.S3Endpoint,
			AccessKey:    cfg.Corpus.S3AccessKey,
			SecretKey:    cfg.Corpus.S3SecretKey,
			UsePathStyle: cfg.Corpus.S3UsePathStyle,
		})
		if err != nil {
			logger.WithError(err).Error("failed to build s3 corpus source")
			os.Exit(1)
		}
	default:
		source = corpus.NewDirectorySource(cfg.Corpus.InterfacesDir, cfg.Corpus.DiagnosticsDir)
	}

	// Per-document run log
	runLog := logrus.New()
	runLog.SetOutput(os.Stdout)
	runLog.SetFormatter(&logrus.JSONFormatter{})
	runLog.SetLevel(runLogLevel(cfg.Observability.LogLevel))

	runner := corpus.NewRunner(source, runLog, corpus.Options{
		Concurrency: cfg.Corpus.Concurrency,
		Cache:       outcomeCache,
		Metrics:     metrics,
	})

	// API server
	server := api.NewServer(api.ServerConfig{
		Runner:  runner,
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Ops server: health probes and metrics on their own port
	healthChecker := observability.NewHealthChecker(store.DB(), redisClient)
	opsMux := http.NewServeMux()
	observability.RegisterHealthRoutes(opsMux, healthChecker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(opsMux, registry)
	}
	opsServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: opsMux,
	}

	// Scheduled work: periodic revalidation and history retention
	scheduler := cron.New()
	if cfg.Corpus.RevalidateSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Corpus.RevalidateSchedule, func() {
			defer observability.RecoverPanic(logger, "scheduled revalidation")
			checkAndRecord(runner, store, logger, "schedule")
		})
		if err != nil {
			logger.WithError(err).Error("invalid revalidation schedule")
			os.Exit(1)
		}
		logger.WithField("schedule", cfg.Corpus.RevalidateSchedule).Info("periodic revalidation enabled")
	}
	if cfg.History.RetentionDays > 0 {
		retention := cfg.History.RetentionDays
		_, err := scheduler.AddFunc("@daily", func() {
			defer observability.RecoverPanic(logger, "history retention")
			cutoff := time.Now().UTC().AddDate(0, 0, -retention)
			deleted, err := store.DeleteRunsBefore(context.Background(), cutoff)
			if err != nil {
				logger.WithError(err).Error("history retention sweep failed")
				return
			}
			if deleted > 0 {
				logger.WithField("deleted", deleted).Info("pruned old check runs")
			}
		})
		if err != nil {
			logger.WithError(err).Error("failed to schedule history retention")
			os.Exit(1)
		}
	}
	scheduler.Start()

	// Graceful shutdown wiring
	shutdownManager := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		return opsServer.Shutdown(ctx)
	})
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		cronCtx := scheduler.Stop()
		select {
		case <-cronCtx.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if otelProviders != nil {
		shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	go func() {
		logger.WithField("addr", opsServer.Addr).Info("ops server listening")
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("ops server failed")
		}
	}()
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("api server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}()

	// First corpus check on boot, so /api/v1/runs/latest answers right away.
	go func() {
		defer observability.RecoverPanic(logger, "startup check")
		checkAndRecord(runner, store, logger, "startup")
	}()

	if err := shutdownManager.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}

// checkAndRecord runs one corpus check and persists the report.
func checkAndRecord(runner *corpus.Runner, store history.Store, logger *observability.Logger, trigger string) {
	report, err := runner.Run(context.Background(), trigger)
	if err != nil {
		logger.WithError(err).WithField("trigger", trigger).Error("corpus check did not complete")
		return
	}
	if err := store.SaveRun(context.Background(), report); err != nil {
		logger.WithError(err).WithField("run_id", report.RunID).Error("failed to persist run report")
	}
	if report.Passed {
		logger.WithFields(map[string]interface{}{
			"run_id":    report.RunID,
			"trigger":   trigger,
			"documents": report.Documents,
			"services":  report.Services,
		}).Info("corpus is consistent")
		return
	}
	logger.WithFields(map[string]interface{}{
		"run_id":     report.RunID,
		"trigger":    trigger,
		"documents":  report.Documents,
		"violations": len(report.Violations),
	}).Warn("corpus check found violations")
}

// runLogLevel maps the daemon log level onto the per-document runner log.
func runLogLevel(level observability.LogLevel) logrus.Level {
	switch level {
	case observability.DebugLevel:
		return logrus.DebugLevel
	case observability.WarnLevel:
		return logrus.WarnLevel
	case observability.ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
