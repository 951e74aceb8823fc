package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/makkenzo/license-gate/internal/config"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/storage/postgres"
	"github.com/makkenzo/license-gate/internal/util"
	"github.com/makkenzo/license-gate/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	description := flag.String("description", "First-party dashboard key", "Description stored with the key")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()

	pool, err := postgres.NewPgxPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	fullKey, prefix, keyHash, err := util.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}

	repo := postgres.NewAPIKeyRepository(pool, appLogger)

	keyID, err := repo.Create(ctx, &apikey.APIKey{
		KeyHash:     keyHash,
		Prefix:      prefix,
		Description: *description,
		IsEnabled:   true,
	})
	if err != nil {
		log.Fatalf("Failed to save API key to database: %v", err)
	}

	fmt.Printf("Generated API Key (SAVE THIS securely!):\n%s\n\n", fullKey)
	fmt.Printf("Prefix: %s\n", prefix)
	fmt.Printf("API Key saved to database with ID: %s\n", keyID)
}
