package main

import (
	"context"

	"github.com/joho/godotenv"

	"beira/internal/config"
	"beira/internal/db"
	"beira/internal/migrate"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := config.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}

	logger.Info("migrations applied")
}
