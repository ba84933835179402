package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcollect/backend/internal/infrastructure/config"
	"github.com/arcollect/backend/internal/infrastructure/logger"
	"github.com/arcollect/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var command string
	flag.StringVar(&command, "command", "up", "Migration command: up, status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		log.Info("Running schema migration",
			zap.String("database", cfg.Database.DBName),
			zap.String("host", cfg.Database.Host),
		)
		if err := db.Migrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Migration completed")
	case "status":
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		log.Info("Database reachable",
			zap.String("database", cfg.Database.DBName),
			zap.String("host", cfg.Database.Host),
		)
	default:
		log.Fatal("Unknown command", zap.String("command", command))
	}
}
