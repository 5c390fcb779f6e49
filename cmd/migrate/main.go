package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/pkg/config"
	"github.com/ragops/planner/pkg/database"
	"github.com/ragops/planner/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.OpenPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	log.Info("running migrations")
	if err := db.AutoMigrate(&models.PlanRecord{}); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations complete")
}
