package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"waste-report-service/internal/auth"
	"waste-report-service/internal/config"
	"waste-report-service/internal/db"
	"waste-report-service/internal/feed"
	httphandler "waste-report-service/internal/http"
	"waste-report-service/internal/http/middleware"
	"waste-report-service/internal/logger"
	"waste-report-service/internal/model"
	"waste-report-service/internal/repository"
	"waste-report-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	reportRepo := repository.NewReportRepository(database)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	var vision service.VisionClient
	if cfg.Vision.BaseURL != "" {
		vision = service.NewHTTPVisionClient(cfg.Vision.BaseURL, cfg.Vision.Timeout)
	}

	hub := feed.New(func(ctx context.Context) ([]model.Report, error) {
		return reportRepo.List(ctx, repository.ReportFilter{})
	}, rdb, log)

	reportService := service.NewReportService(reportRepo, vision, hub, log)
	escalationEngine := service.NewEscalationEngine(reportRepo, hub, log, cfg.Escalation.ScanInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go escalationEngine.Run(ctx)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(reportService, escalationEngine, hub, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting waste report service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
