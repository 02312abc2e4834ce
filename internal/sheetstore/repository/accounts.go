package repository

import (
	"context"
	"errors"
	"fmt"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSheetRepository) Admins(ctx context.Context) ([]model.Admin, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password_hash": 0}).SetSort(bson.D{{Key: "$natural", Value: 1}})
	return findAll[model.Admin](ctx, r.coll(AdminsCollection), bson.M{}, opts)
}

func (r *mongoSheetRepository) FindAdmin(ctx context.Context, id string) (*model.Admin, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var admin model.Admin
	err := r.coll(AdminsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: account %s", sheeterrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &admin, nil
}

func (r *mongoSheetRepository) InsertAdmin(ctx context.Context, admin model.Admin) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.coll(AdminsCollection).InsertOne(ctx, admin)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", sheeterrors.ErrDuplicateAccount, admin.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateAdmin sets fields on one account. Callers pass bson field names.
func (r *mongoSheetRepository) UpdateAdmin(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(AdminsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return notFoundIfUnmatched(result, err, "account "+id)
}

func (r *mongoSheetRepository) DeleteAdmin(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(AdminsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: account %s", sheeterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoSheetRepository) Requests(ctx context.Context) ([]model.AdminRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return findAll[model.AdminRequest](ctx, r.coll(AdminRequestsCollection), bson.M{}, insertionOrder)
}

func (r *mongoSheetRepository) InsertRequest(ctx context.Context, request model.AdminRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.coll(AdminRequestsCollection).ReplaceOne(ctx,
		bson.M{"_id": request.ID}, request, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *mongoSheetRepository) UpdateRequest(ctx context.Context, id model.ID, status model.RequestStatus, memo string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(AdminRequestsCollection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "memo": memo}})
	return notFoundIfUnmatched(result, err, "request "+id.String())
}

func (r *mongoSheetRepository) DeleteRequest(ctx context.Context, id model.ID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.coll(AdminRequestsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}
