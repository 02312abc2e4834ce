//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	"gymdesk/pkg/client"
	"gymdesk/pkg/config"
	"gymdesk/pkg/dates"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Transactions need a replica set, e.g. `mongod --replSet rs0`.
const defaultTestMongoURI = "mongodb://localhost:27017/?replicaSet=rs0"

func newIntegrationRepo(t *testing.T) SheetRepository {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = defaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	if err := mc.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", uri, err)
	}

	dbName := fmt.Sprintf("gymdesk_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mc.Database(dbName).Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		_ = mc.Disconnect(ctx)
	})

	cfg := &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mc},
	}
	return NewMongoSheetRepository(cfg)
}

func TestBookingRoundTrip(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	booking := model.BookingRequest{
		ID: "b1", Date: dates.MustParse("2026-03-05"), Period: model.Period1,
		Location: model.Gymnasium, Class: "5-1", Status: model.BookingPending,
	}
	require.NoError(t, repo.InsertBooking(ctx, booking))
	require.NoError(t, repo.InsertBooking(ctx, booking))
	require.NoError(t, repo.ApproveBooking(ctx, "b1"))

	got, err := repo.Bookings(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.BookingApproved, got[0].Status)

	assert.ErrorIs(t, repo.ApproveBooking(ctx, "missing"), sheeterrors.ErrNotFound)
}

func TestRentalsAreIdempotent(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertItem(ctx, model.InventoryItem{ID: "ball", Name: "공", Location: "체육전담실", Quantity: 10}))
	rental := model.Rental{ID: "r1", ItemID: "ball", Class: "5-1", Count: 2, Date: dates.MustParse("2026-03-02")}
	require.NoError(t, repo.AddRental(ctx, rental))
	require.NoError(t, repo.AddRental(ctx, rental))
	require.NoError(t, repo.ReturnRental(ctx, "r1"))

	items, err := repo.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Rentals, 1)
	assert.True(t, items[0].Rentals[0].Returned)
}

func TestDeleteLocationUnassignsItems(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddLocation(ctx, "창고"))
	assert.ErrorIs(t, repo.AddLocation(ctx, "창고"), sheeterrors.ErrLocationInUse)
	require.NoError(t, repo.InsertItem(ctx, model.InventoryItem{ID: "mat", Name: "매트", Location: "창고", Quantity: 3}))

	require.NoError(t, repo.DeleteLocation(ctx, "창고"))

	items, err := repo.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NoLocation, items[0].Location)
}

func TestActivityRetention(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendActivity(ctx, model.ActivityLog{Timestamp: "2026-03-04 09:00:00", Message: fmt.Sprintf("m%d", i)}, 3))
	}

	logs, err := repo.ActivityLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "m4", logs[0].Message)
	assert.Equal(t, "m2", logs[2].Message)
}

func TestAdminHashStaysServerSide(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertAdmin(ctx, model.Admin{ID: "5-1", Name: "김선생", Role: model.RolePending, PasswordHash: "hash"}))
	assert.ErrorIs(t, repo.InsertAdmin(ctx, model.Admin{ID: "5-1", Name: "x", Role: model.RolePending, PasswordHash: "h"}), sheeterrors.ErrDuplicateAccount)
	require.NoError(t, repo.UpdateAdmin(ctx, "5-1", bson.M{"role": model.RoleTeacher}))

	admins, err := repo.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Empty(t, admins[0].PasswordHash)
	assert.Equal(t, model.RoleTeacher, admins[0].Role)

	found, err := repo.FindAdmin(ctx, "5-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)
}
