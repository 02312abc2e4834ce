package repository

import (
	"context"
	"fmt"

	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSheetRepository) BaseSchedule(ctx context.Context) ([]model.BaseScheduleEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return findAll[model.BaseScheduleEntry](ctx, r.coll(BaseScheduleCollection), bson.M{}, insertionOrder)
}

// ReplaceBaseSchedule swaps the whole table in one transaction so readers
// never see a half-imported timetable.
func (r *mongoSheetRepository) ReplaceBaseSchedule(ctx context.Context, entries []model.BaseScheduleEntry) error {
	return r.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		coll := r.coll(BaseScheduleCollection)
		if _, err := coll.DeleteMany(sc, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear base schedule: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		docs := make([]any, len(entries))
		for i, e := range entries {
			docs[i] = e
		}
		if _, err := coll.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("failed to insert base schedule: %w", err)
		}
		return nil
	})
}

func (r *mongoSheetRepository) Bookings(ctx context.Context) ([]model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return findAll[model.BookingRequest](ctx, r.coll(BookingsCollection), bson.M{}, insertionOrder)
}

// InsertBooking is an upsert on the id so a replayed action is harmless.
func (r *mongoSheetRepository) InsertBooking(ctx context.Context, booking model.BookingRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.coll(BookingsCollection).ReplaceOne(ctx,
		bson.M{"_id": booking.ID}, booking, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoSheetRepository) ApproveBooking(ctx context.Context, id model.ID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(BookingsCollection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"status": model.BookingApproved}})
	return notFoundIfUnmatched(result, err, "booking "+id.String())
}

func (r *mongoSheetRepository) DeleteBooking(ctx context.Context, id model.ID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.coll(BookingsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
