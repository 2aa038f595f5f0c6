package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/aggregate"
	"github.com/pranav8431/saas-analytics-dashboard/internal/anomaly"
	"github.com/pranav8431/saas-analytics-dashboard/internal/config"
	"github.com/pranav8431/saas-analytics-dashboard/internal/handler"
	"github.com/pranav8431/saas-analytics-dashboard/internal/logger"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue/sqs"
	"github.com/pranav8431/saas-analytics-dashboard/internal/repository/clickhouse"
	"github.com/pranav8431/saas-analytics-dashboard/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	detection, err := anomaly.FromSettings(
		cfg.Detection.StddevThreshold,
		cfg.Detection.SensitivityLevel,
		cfg.Detection.MinDataPoints,
		cfg.Detection.TieBreak)
	if err != nil {
		log.Fatal("Invalid detection config", zap.Error(err))
	}

	periods, err := aggregate.ParsePeriods(cfg.Worker.Periods)
	if err != nil {
		log.Fatal("Invalid analysis periods", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	// Initialize repository
	repo := clickhouse.NewRepository(clickhouseClient, log)

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Initialize analytics service
	analytics := service.NewAnalyticsService(repo, sqsClient, detection, periods, log)

	// Initialize handler
	h := handler.NewHandler(analytics, cfg.Upload.MaxBytes, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
