// Package repository persists the sheet tables in MongoDB, one collection
// per table.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	"gymdesk/pkg/config"
	mongotx "gymdesk/pkg/db/mongo"
	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BaseScheduleCollection  = "base_schedule"
	BookingsCollection      = "bookings"
	InventoryCollection     = "inventory"
	AdminsCollection        = "admins"
	AdminRequestsCollection = "admin_requests"
	LocationsCollection     = "locations"
	ActivityLogsCollection  = "activity_logs"
	SettingsCollection      = "settings"
)

const greetingKey = "greeting"

type SheetRepository interface {
	BaseSchedule(ctx context.Context) ([]model.BaseScheduleEntry, error)
	ReplaceBaseSchedule(ctx context.Context, entries []model.BaseScheduleEntry) error

	Bookings(ctx context.Context) ([]model.BookingRequest, error)
	InsertBooking(ctx context.Context, booking model.BookingRequest) error
	ApproveBooking(ctx context.Context, id model.ID) error
	DeleteBooking(ctx context.Context, id model.ID) error

	Inventory(ctx context.Context) ([]model.InventoryItem, error)
	InsertItem(ctx context.Context, item model.InventoryItem) error
	UpdateItemQuantity(ctx context.Context, id model.ID, quantity int) error
	DeleteItem(ctx context.Context, id model.ID) error
	AddRental(ctx context.Context, rental model.Rental) error
	ReturnRental(ctx context.Context, rentalID model.ID) error
	ApplyPartialReturn(ctx context.Context, p model.PartialReturnPayload) error
	AddRepair(ctx context.Context, repair model.Repair) error
	UpdateRepair(ctx context.Context, id model.ID, status model.RepairStatus, adminMemo string) error

	Locations(ctx context.Context) ([]string, error)
	AddLocation(ctx context.Context, name string) error
	DeleteLocation(ctx context.Context, name string) error
	MoveItems(ctx context.Context, ids []model.ID, location string) error

	Requests(ctx context.Context) ([]model.AdminRequest, error)
	InsertRequest(ctx context.Context, request model.AdminRequest) error
	UpdateRequest(ctx context.Context, id model.ID, status model.RequestStatus, memo string) error
	DeleteRequest(ctx context.Context, id model.ID) error

	Admins(ctx context.Context) ([]model.Admin, error)
	FindAdmin(ctx context.Context, id string) (*model.Admin, error)
	InsertAdmin(ctx context.Context, admin model.Admin) error
	UpdateAdmin(ctx context.Context, id string, fields bson.M) error
	DeleteAdmin(ctx context.Context, id string) error

	ActivityLogs(ctx context.Context, limit int) ([]model.ActivityLog, error)
	AppendActivity(ctx context.Context, entry model.ActivityLog, retention int) error

	Greeting(ctx context.Context) (string, error)
	SetGreeting(ctx context.Context, text string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoSheetRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	txManager mongotx.TransactionManager
}

func NewMongoSheetRepository(cfg *config.Config) SheetRepository {
	return &mongoSheetRepository{
		cfg:       cfg,
		db:        cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoSheetRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// withTimeout leaves session contexts alone: wrapping one breaks the
// transaction it belongs to.
func (r *mongoSheetRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSheetRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// insertionOrder keeps the sheet row order the clients rely on.
var insertionOrder = options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func notFoundIfUnmatched(result *mongo.UpdateResult, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", sheeterrors.ErrNotFound, what)
	}
	return nil
}

func (r *mongoSheetRepository) Greeting(ctx context.Context) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc struct {
		Text string `bson:"text"`
	}
	err := r.coll(SettingsCollection).FindOne(ctx, bson.M{"_id": greetingKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read greeting: %w", err)
	}
	return doc.Text, nil
}

func (r *mongoSheetRepository) SetGreeting(ctx context.Context, text string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.coll(SettingsCollection).UpdateOne(ctx,
		bson.M{"_id": greetingKey},
		bson.M{"$set": bson.M{"text": text}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set greeting: %w", err)
	}
	return nil
}

func (r *mongoSheetRepository) ActivityLogs(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "$natural", Value: -1}}).
		SetLimit(int64(limit))
	return findAll[model.ActivityLog](ctx, r.coll(ActivityLogsCollection), bson.M{}, opts)
}

// AppendActivity stores entry and drops everything older than the newest
// retention entries.
func (r *mongoSheetRepository) AppendActivity(ctx context.Context, entry model.ActivityLog, retention int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll := r.coll(ActivityLogsCollection)
	if _, err := coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count activity: %w", err)
	}
	if excess := count - int64(retention); excess > 0 {
		opts := options.Find().
			SetSort(bson.D{{Key: "$natural", Value: 1}}).
			SetLimit(excess).
			SetProjection(bson.M{"_id": 1})
		old, err := findAll[bson.M](ctx, coll, bson.M{}, opts)
		if err != nil {
			return err
		}
		ids := make([]any, 0, len(old))
		for _, doc := range old {
			ids = append(ids, doc["_id"])
		}
		if _, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return fmt.Errorf("failed to trim activity: %w", err)
		}
	}
	return nil
}
