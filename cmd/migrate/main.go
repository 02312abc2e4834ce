package main

import (
	"context"
	"time"

	mongoMigration "gymdesk/internal/migrations/mongo"
	"gymdesk/pkg/config"
)

const migrationTimeout = 120 * time.Second

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	cfg := config.Load(config.JobMigrate)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting Mongo migration job")

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if cfg.SeedMasterID != "" {
		seed := mongoMigration.MasterSeed{
			ID:       cfg.SeedMasterID,
			Name:     cfg.SeedMasterName,
			Password: cfg.SeedMasterPassword,
		}
		if err := mongoMigration.SeedMaster(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, seed, cfg.Log); err != nil {
			cfg.Log.Fatal("Seeding master account failed", "error", err)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}
