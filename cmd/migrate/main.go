package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
)

func main() {
	statusOnly := flag.Bool("status", false, "Print migration status without applying anything")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *statusOnly {
		if err := db.MigrationStatus(ctx); err != nil {
			logger.Fatalw("Failed to read migration status", "error", err)
		}
		return
	}

	logger.Info("Running database migrations...")
	if err := db.Migrate(ctx); err != nil {
		logger.Fatalw("Failed to apply migrations", "error", err)
	}
	logger.Info("Migration completed successfully")
}
