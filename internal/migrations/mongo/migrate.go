// Package mongo creates the sheet-store collections with their validators
// and indexes, and seeds the first master account.
package mongo

import (
	"context"
	"fmt"

	"gymdesk/internal/migrations/mongo/validators"
	"gymdesk/internal/sheetstore/repository"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	BaseScheduleIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "day", Value: 1},
			{Key: "period", Value: 1},
			{Key: "location", Value: 1},
		}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "period", Value: 1},
			{Key: "location", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	InventoryIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "rentals.id", Value: 1}}},
		{Keys: bson.D{{Key: "repairs.id", Value: 1}}},
	}

	AdminsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	AdminRequestsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var collections = map[string]collectionDef{
	repository.BaseScheduleCollection:  {Indexes: BaseScheduleIndexes, Validator: validators.BaseScheduleValidator},
	repository.BookingsCollection:      {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
	repository.InventoryCollection:     {Indexes: InventoryIndexes, Validator: validators.InventoryValidator},
	repository.AdminsCollection:        {Indexes: AdminsIndexes, Validator: validators.AdminValidator},
	repository.AdminRequestsCollection: {Indexes: AdminRequestsIndexes, Validator: validators.AdminRequestValidator},
	repository.ActivityLogsCollection:  {Validator: validators.ActivityLogValidator},
	repository.LocationsCollection:     {},
	repository.SettingsCollection:      {},
}

// MasterSeed is the first account; it lets someone approve the others.
type MasterSeed struct {
	ID       string
	Name     string
	Password string
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if len(def.Indexes) == 0 {
			continue
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedLocations(ctx, db, log); err != nil {
		return err
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

// seedLocations fills an empty locations collection with the defaults.
func seedLocations(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	coll := db.Collection(repository.LocationsCollection)
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	docs := make([]any, 0, len(model.DefaultLocations))
	for _, name := range model.DefaultLocations {
		docs = append(docs, bson.M{"_id": name})
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed locations: %w", err)
	}
	log.Info("Seeded default locations", "count", len(docs))
	return nil
}

// SeedMaster creates the master account unless an account with that id
// already exists. Existing accounts are never modified.
func SeedMaster(ctx context.Context, client *mongo.Client, dbName string, seed MasterSeed, log *logger.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash master password: %w", err)
	}

	result, err := client.Database(dbName).Collection(repository.AdminsCollection).UpdateOne(ctx,
		bson.M{"_id": seed.ID},
		bson.M{"$setOnInsert": bson.M{
			"name":          seed.Name,
			"role":          model.RoleMaster,
			"password_hash": string(hash),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to seed master account: %w", err)
	}

	if result.UpsertedCount == 0 {
		log.Info("Master account already exists", "id", seed.ID)
		return nil
	}
	log.Info("Seeded master account", "id", seed.ID)
	return nil
}
