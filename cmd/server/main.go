package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/config"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/db"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/db/repository"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/handler"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/metrics"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/cache"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/collector"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/quota"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/scoring"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/youtube"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/validation"
	"github.com/ad-tracker/youtube-keyword-analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Log
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.New(registry)

	ledger := quota.NewLedger(cfg.Quota.DailyLimit, logger.Named("quota"))
	ledger.SetRecorder(pipelineMetrics)

	youtubeClient, err := youtube.NewClient(cfg.YouTube.APIKey)
	if err != nil {
		log.Fatal("Failed to initialize YouTube API client", zap.Error(err))
	}

	videoCollector := collector.New(youtubeClient, ledger, collector.Options{
		CallDelay:        cfg.YouTube.CallDelay,
		CommentsPerVideo: cfg.YouTube.CommentsPerVideo,
		Logger:           logger.Named("collector"),
		Metrics:          pipelineMetrics,
	})

	opts := service.Options{
		Validator:    validation.New(cfg.Analysis.MaxLookbackMonths, cfg.Analysis.MaxResults),
		Metrics:      pipelineMetrics,
		Logger:       logger.Named("analysis"),
		KeywordLimit: cfg.Analysis.KeywordLimit,
	}

	ctx := context.Background()

	// Optional collaborators are only assigned when enabled so the service sees nil interfaces.
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		pool, err = db.NewPool(ctx, db.FromAppConfig(cfg.Database))
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close(pool)

		log.Info("Database connection established",
			zap.String("host", cfg.Database.Host),
			zap.Int32("max_conns", pool.Config().MaxConns),
		)
		opts.Store = repository.NewReportRepository(pool)
	} else {
		log.Info("Report storage disabled (APP_DATABASE_ENABLED=false)")
	}

	var publisher *service.ReportPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = service.NewReportPublisher(&cfg.RabbitMQ, logger.Named("publisher"))
		if err != nil {
			log.Fatal("Failed to initialize report publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Failed to close report publisher", zap.Error(err))
			}
		}()
		opts.Sink = publisher
	} else {
		log.Info("Report publishing disabled (APP_RABBITMQ_ENABLED=false)")
	}

	analysisService := service.NewAnalysisService(
		videoCollector,
		scoring.NewScorer(nil),
		cache.New(logger.Named("cache"), pipelineMetrics),
		ledger,
		opts,
	)

	healthHandler := newHealthHandler(pool, publisher)
	router := handler.NewRouter(
		handler.NewAnalysisHandler(analysisService, logger.Named("http")),
		healthHandler,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		logger.Named("http"),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		// Uncached analyses wait on paced remote calls.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Int("quota_limit", ledger.Limit()),
			zap.Bool("storage_enabled", analysisService.StorageEnabled()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				log.Error("Failed to close server", zap.Error(err))
			}
			return
		}

		log.Info("Server stopped gracefully",
			zap.Int("quota_used", ledger.Used()),
			zap.Float64("quota_usage_percent", ledger.UsagePercentage()),
		)
	}
}

func newHealthHandler(pool *pgxpool.Pool, publisher *service.ReportPublisher) *handler.HealthHandler {
	var database handler.Pinger
	if pool != nil {
		database = pool
	}
	var broker handler.HealthReporter
	if publisher != nil {
		broker = publisher
	}
	return handler.NewHealthHandler(database, broker)
}
