package service

import (
	"context"
	"fmt"

	inventoryerrors "gymdesk/internal/inventory/errors"
	"gymdesk/internal/permission"
	"gymdesk/internal/state"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
)

// PartialReturn is the outcome of returning part of a borrower's units.
type PartialReturn struct {
	ItemID    model.ID           `json:"item_id"`
	Class     string             `json:"class"`
	Count     int                `json:"count"`
	Returned  []model.ID         `json:"returned_ids"`
	Split     *model.RentalSplit `json:"split,omitempty"`
	Available int                `json:"available"`
}

func (s *inventoryService) Rent(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*model.Rental, error) {
	rental, _, err := s.rent(ctx, actor, itemID, borrower, count)
	return rental, err
}

func (s *inventoryService) rent(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*model.Rental, *state.Receipt, error) {
	class, err := borrowerFor(actor, borrower)
	if err != nil {
		return nil, nil, err
	}
	if err := validateCount(count); err != nil {
		return nil, nil, err
	}

	rental := model.Rental{
		ID:     model.NewID(),
		ItemID: itemID,
		Class:  class,
		Count:  count,
		Date:   s.store.Today(),
	}
	var name string

	receipt, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindItem(itemID)
		if i < 0 {
			return nil, itemNotFound(itemID)
		}
		item := &snap.Inventory[i]
		if count > item.Available() {
			return nil, insufficient(item, count)
		}
		name = item.Name
		item.Rentals = append(item.Rentals, rental)

		msg := fmt.Sprintf("%s에서 %s %d개 대여하였습니다. (잔여 수량: %d개)", class, item.Name, count, item.Available())
		return []model.Action{
			model.NewAction(model.ActionAddRental, model.RentalPayload{Data: rental}),
			s.store.RecordActivity(snap, msg),
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.cfg.Log.Info("Item rented", "item_id", itemID, "item", name, "class", class, "count", count)
	return &rental, receipt, nil
}

// ReturnFull marks a single rental returned. Returning a rental twice is a
// no-op.
func (s *inventoryService) ReturnFull(ctx context.Context, actor permission.Actor, rentalID model.ID) (*model.Rental, error) {
	var rental model.Rental
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i, r := snap.FindRental(rentalID)
		if i < 0 {
			return nil, apperrors.NotFoundWithID("Rental", rentalID.String()).WithCause(inventoryerrors.ErrRentalNotFound)
		}
		item := &snap.Inventory[i]
		current := &item.Rentals[r]
		if !actor.IsAdmin() && current.Class != actor.ID {
			return nil, apperrors.Forbidden("Only the borrower or an admin can return this rental").
				WithCause(inventoryerrors.ErrNotBorrower)
		}
		if current.Returned {
			rental = *current
			return nil, nil
		}
		current.Returned = true
		rental = *current

		msg := fmt.Sprintf("%s에서 대여한 %s %d개 반납하였습니다. (잔여 수량: %d개)",
			current.Class, item.Name, current.Count, item.Available())
		return []model.Action{
			model.NewAction(model.ActionReturnItem, model.ReturnPayload{RentalID: rentalID}),
			s.store.RecordActivity(snap, msg),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Rental returned", "rental_id", rentalID, "class", rental.Class, "count", rental.Count)
	return &rental, nil
}

func (s *inventoryService) ReturnPartial(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*PartialReturn, error) {
	result, _, err := s.returnPartial(ctx, actor, itemID, borrower, count)
	return result, err
}

// returnPartial returns count units of the borrower's rentals of one item,
// consuming the oldest rentals first. A rental that is only partly covered
// is split into a remaining active record and a new returned one.
func (s *inventoryService) returnPartial(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*PartialReturn, *state.Receipt, error) {
	class, err := borrowerFor(actor, borrower)
	if err != nil {
		return nil, nil, err
	}
	if err := validateCount(count); err != nil {
		return nil, nil, err
	}

	result := &PartialReturn{ItemID: itemID, Class: class, Count: count, Returned: []model.ID{}}
	var name string
	today := s.store.Today()

	receipt, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindItem(itemID)
		if i < 0 {
			return nil, itemNotFound(itemID)
		}
		item := &snap.Inventory[i]
		active := item.ActiveRentals(class)

		rented := 0
		for _, n := range active {
			rented += item.Rentals[n].Count
		}
		if count > rented {
			return nil, apperrors.Validation(
				fmt.Sprintf("%s has only %d of %s on loan", class, rented, item.Name),
				map[string]any{"rented": rented, "requested": count},
			).WithCause(inventoryerrors.ErrExceedsRented)
		}

		left := count
		for _, n := range active {
			if left == 0 {
				break
			}
			r := &item.Rentals[n]
			if r.Count <= left {
				r.Returned = true
				left -= r.Count
				result.Returned = append(result.Returned, r.ID)
				continue
			}
			r.Count -= left
			result.Split = &model.RentalSplit{
				RentalID:  r.ID,
				Remaining: r.Count,
				Returned: model.Rental{
					ID:       model.NewID(),
					ItemID:   item.ID,
					Class:    class,
					Count:    left,
					Date:     today,
					Returned: true,
				},
			}
			left = 0
		}
		if result.Split != nil {
			item.Rentals = append(item.Rentals, result.Split.Returned)
		}

		name = item.Name
		result.Available = item.Available()

		msg := fmt.Sprintf("%s에서 대여한 %s %d개 반납하였습니다. (잔여 수량: %d개)", class, item.Name, count, result.Available)
		return []model.Action{
			model.NewAction(model.ActionPartialReturn, model.PartialReturnPayload{
				ItemID:   itemID,
				Class:    class,
				Count:    count,
				Returned: result.Returned,
				Split:    result.Split,
			}),
			s.store.RecordActivity(snap, msg),
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.cfg.Log.Info("Items returned", "item_id", itemID, "item", name, "class", class, "count", count, "split", result.Split != nil)
	return result, receipt, nil
}

// ListRentals lists rentals across all items, optionally for one borrower
// and only those still out.
func (s *inventoryService) ListRentals(borrower string, activeOnly bool) []RentalView {
	out := []RentalView{}
	s.store.View(func(snap *model.Snapshot) {
		for _, item := range snap.Inventory {
			for _, r := range item.Rentals {
				if borrower != "" && r.Class != borrower {
					continue
				}
				if activeOnly && r.Returned {
					continue
				}
				out = append(out, RentalView{Rental: r, ItemName: item.Name})
			}
		}
	})
	return out
}
