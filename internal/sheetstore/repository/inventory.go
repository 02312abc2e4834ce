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

func (r *mongoSheetRepository) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return findAll[model.InventoryItem](ctx, r.coll(InventoryCollection), bson.M{}, insertionOrder)
}

func (r *mongoSheetRepository) InsertItem(ctx context.Context, item model.InventoryItem) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if item.Rentals == nil {
		item.Rentals = []model.Rental{}
	}
	if item.Repairs == nil {
		item.Repairs = []model.Repair{}
	}
	_, err := r.coll(InventoryCollection).ReplaceOne(ctx,
		bson.M{"_id": item.ID}, item, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (r *mongoSheetRepository) UpdateItemQuantity(ctx context.Context, id model.ID, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(InventoryCollection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"quantity": quantity}})
	return notFoundIfUnmatched(result, err, "item "+id.String())
}

func (r *mongoSheetRepository) DeleteItem(ctx context.Context, id model.ID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.coll(InventoryCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// AddRental appends to the item's rentals unless a rental with the same id
// is already there.
func (r *mongoSheetRepository) AddRental(ctx context.Context, rental model.Rental) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll := r.coll(InventoryCollection)
	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": rental.ItemID, "rentals.id": bson.M{"$ne": rental.ID}},
		bson.M{"$push": bson.M{"rentals": rental}})
	if err != nil {
		return fmt.Errorf("failed to add rental: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.requireItem(ctx, rental.ItemID)
	}
	return nil
}

func (r *mongoSheetRepository) requireItem(ctx context.Context, id model.ID) error {
	err := r.coll(InventoryCollection).FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: item %s", sheeterrors.ErrNotFound, id)
	}
	return err
}

func (r *mongoSheetRepository) ReturnRental(ctx context.Context, rentalID model.ID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(InventoryCollection).UpdateOne(ctx,
		bson.M{"rentals.id": rentalID},
		bson.M{"$set": bson.M{"rentals.$.returned": true}})
	return notFoundIfUnmatched(result, err, "rental "+rentalID.String())
}

// ApplyPartialReturn reproduces the ledger's outcome: whole rentals marked
// returned, the split rental reduced and its returned part appended.
func (r *mongoSheetRepository) ApplyPartialReturn(ctx context.Context, p model.PartialReturnPayload) error {
	return r.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		coll := r.coll(InventoryCollection)
		filter := bson.M{"_id": p.ItemID}

		if len(p.Returned) > 0 {
			opts := options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []any{bson.M{"r.id": bson.M{"$in": p.Returned}}},
			})
			result, err := coll.UpdateOne(sc, filter,
				bson.M{"$set": bson.M{"rentals.$[r].returned": true}}, opts)
			if err := notFoundIfUnmatched(result, err, "item "+p.ItemID.String()); err != nil {
				return err
			}
		}

		if p.Split != nil {
			result, err := coll.UpdateOne(sc,
				bson.M{"_id": p.ItemID, "rentals.id": p.Split.RentalID},
				bson.M{"$set": bson.M{"rentals.$.count": p.Split.Remaining}})
			if err := notFoundIfUnmatched(result, err, "rental "+p.Split.RentalID.String()); err != nil {
				return err
			}
			if _, err := coll.UpdateOne(sc,
				bson.M{"_id": p.ItemID, "rentals.id": bson.M{"$ne": p.Split.Returned.ID}},
				bson.M{"$push": bson.M{"rentals": p.Split.Returned}}); err != nil {
				return fmt.Errorf("failed to append split rental: %w", err)
			}
		}
		return nil
	})
}

func (r *mongoSheetRepository) AddRepair(ctx context.Context, repair model.Repair) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(InventoryCollection).UpdateOne(ctx,
		bson.M{"_id": repair.ItemID, "repairs.id": bson.M{"$ne": repair.ID}},
		bson.M{"$push": bson.M{"repairs": repair}})
	if err != nil {
		return fmt.Errorf("failed to add repair: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.requireItem(ctx, repair.ItemID)
	}
	return nil
}

func (r *mongoSheetRepository) UpdateRepair(ctx context.Context, id model.ID, status model.RepairStatus, adminMemo string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.coll(InventoryCollection).UpdateOne(ctx,
		bson.M{"repairs.id": id},
		bson.M{"$set": bson.M{"repairs.$.status": status, "repairs.$.admin_memo": adminMemo}})
	return notFoundIfUnmatched(result, err, "repair "+id.String())
}

type locationDoc struct {
	Name string `bson:"_id"`
}

func (r *mongoSheetRepository) Locations(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	docs, err := findAll[locationDoc](ctx, r.coll(LocationsCollection), bson.M{}, insertionOrder)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names, nil
}

func (r *mongoSheetRepository) AddLocation(ctx context.Context, name string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.coll(LocationsCollection).InsertOne(ctx, locationDoc{Name: name})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", sheeterrors.ErrLocationInUse, name)
	}
	if err != nil {
		return fmt.Errorf("failed to add location: %w", err)
	}
	return nil
}

// DeleteLocation removes the location and parks its items under
// model.NoLocation.
func (r *mongoSheetRepository) DeleteLocation(ctx context.Context, name string) error {
	return r.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.coll(LocationsCollection).DeleteOne(sc, bson.M{"_id": name})
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("%w: location %s", sheeterrors.ErrNotFound, name)
		}
		if _, err := r.coll(InventoryCollection).UpdateMany(sc,
			bson.M{"location": name},
			bson.M{"$set": bson.M{"location": model.NoLocation}}); err != nil {
			return fmt.Errorf("failed to move items out of %s: %w", name, err)
		}
		return nil
	})
}

func (r *mongoSheetRepository) MoveItems(ctx context.Context, ids []model.ID, location string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.coll(InventoryCollection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"location": location}}); err != nil {
		return fmt.Errorf("failed to move items: %w", err)
	}
	return nil
}
