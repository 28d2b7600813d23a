package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-gin-marketplace/internal/app/config"
	"github.com/Apurer/go-gin-marketplace/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-marketplace/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("cannot migrate without postgres: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	logger.Info("schema is up to date")
}
