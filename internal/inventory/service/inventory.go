package service

import (
	"context"
	"fmt"
	"slices"

	inventoryerrors "gymdesk/internal/inventory/errors"
	"gymdesk/internal/permission"
	"gymdesk/internal/state"
	"gymdesk/pkg/config"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
	"gymdesk/pkg/validation"
)

type InventoryService interface {
	ListItems() []ItemView
	GetItem(id model.ID) (*ItemView, error)
	Available(id model.ID) (int, error)
	AddItem(ctx context.Context, actor permission.Actor, name, location string, quantity int) (*model.InventoryItem, error)
	UpdateQuantity(ctx context.Context, actor permission.Actor, id model.ID, quantity int) (*ItemView, error)
	DeleteItem(ctx context.Context, actor permission.Actor, id model.ID) (bool, error)

	Rent(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*model.Rental, error)
	ReturnFull(ctx context.Context, actor permission.Actor, rentalID model.ID) (*model.Rental, error)
	ReturnPartial(ctx context.Context, actor permission.Actor, itemID model.ID, borrower string, count int) (*PartialReturn, error)
	ListRentals(borrower string, activeOnly bool) []RentalView

	RequestRepair(ctx context.Context, actor permission.Actor, itemID model.ID, count int, memo string) (*model.Repair, error)
	UpdateRepairStatus(ctx context.Context, actor permission.Actor, repairID model.ID, status model.RepairStatus, adminMemo string) (*model.Repair, error)
	ListRepairs(status model.RepairStatus) []RepairView

	BulkRent(ctx context.Context, actor permission.Actor, borrower string, lines []BulkLine) (*BulkSummary, error)
	BulkReturn(ctx context.Context, actor permission.Actor, borrower string, lines []BulkLine) (*BulkSummary, error)

	Locations() []string
	AddLocation(ctx context.Context, actor permission.Actor, name string) error
	DeleteLocation(ctx context.Context, actor permission.Actor, name string) (int, error)
	MoveItems(ctx context.Context, actor permission.Actor, ids []model.ID, location string) (int, error)
}

// ItemView is an item with its derived availability.
type ItemView struct {
	model.InventoryItem
	Available int `json:"available"`
}

type RentalView struct {
	model.Rental
	ItemName string `json:"item_name"`
}

type RepairView struct {
	model.Repair
	ItemName string `json:"item_name"`
}

type inventoryService struct {
	store     *state.Store
	validator *validation.Validator
	cfg       *config.Config
}

func NewInventoryService(store *state.Store, validator *validation.Validator, cfg *config.Config) InventoryService {
	return &inventoryService{
		store:     store,
		validator: validator,
		cfg:       cfg,
	}
}

func itemNotFound(id model.ID) error {
	return apperrors.NotFoundWithID("Item", id.String()).WithCause(inventoryerrors.ErrItemNotFound)
}

func requireAdmin(actor permission.Actor) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Admin role required").WithCause(inventoryerrors.ErrAdminOnly)
	}
	return nil
}

// borrowerFor resolves who a rental is recorded under. Non-admins always
// act for their own class.
func borrowerFor(actor permission.Actor, borrower string) (string, error) {
	borrower = sanitizer.NormalizeClass(borrower)
	own := sanitizer.NormalizeClass(actor.ID)
	if own == "" {
		return "", apperrors.Unauthorized("Login required")
	}
	if borrower == "" || borrower == own {
		return own, nil
	}
	if !actor.IsAdmin() {
		return "", apperrors.Forbidden("Only admins may act for another class").WithCause(inventoryerrors.ErrNotBorrower)
	}
	return borrower, nil
}

func validateCount(count int) error {
	if count < 1 {
		return apperrors.Validation("Count must be at least 1", map[string]any{"count": count}).
			WithCause(inventoryerrors.ErrInvalidCount)
	}
	return nil
}

func insufficient(item *model.InventoryItem, requested int) error {
	return apperrors.Validation(
		fmt.Sprintf("Only %d of %s available", item.Available(), item.Name),
		map[string]any{"available": item.Available(), "requested": requested},
	).WithCause(inventoryerrors.ErrInsufficientAvailability)
}

func (s *inventoryService) ListItems() []ItemView {
	var out []ItemView
	s.store.View(func(snap *model.Snapshot) {
		out = make([]ItemView, 0, len(snap.Inventory))
		for i := range snap.Inventory {
			out = append(out, viewOf(&snap.Inventory[i]))
		}
	})
	return out
}

func viewOf(item *model.InventoryItem) ItemView {
	c := *item
	c.Rentals = slices.Clone(item.Rentals)
	c.Repairs = slices.Clone(item.Repairs)
	return ItemView{InventoryItem: c, Available: item.Available()}
}

func (s *inventoryService) GetItem(id model.ID) (*ItemView, error) {
	var (
		view  ItemView
		found bool
	)
	s.store.View(func(snap *model.Snapshot) {
		if i := snap.FindItem(id); i >= 0 {
			view = viewOf(&snap.Inventory[i])
			found = true
		}
	})
	if !found {
		return nil, itemNotFound(id)
	}
	return &view, nil
}

func (s *inventoryService) Available(id model.ID) (int, error) {
	available := 0
	found := false
	s.store.View(func(snap *model.Snapshot) {
		if i := snap.FindItem(id); i >= 0 {
			available = snap.Inventory[i].Available()
			found = true
		}
	})
	if !found {
		return 0, itemNotFound(id)
	}
	return available, nil
}

func (s *inventoryService) AddItem(ctx context.Context, actor permission.Actor, name, location string, quantity int) (*model.InventoryItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	item := model.InventoryItem{
		ID:       model.NewID(),
		Name:     sanitizer.NormalizeName(name),
		Location: sanitizer.NormalizeLocation(location),
		Quantity: quantity,
		Rentals:  []model.Rental{},
		Repairs:  []model.Repair{},
	}
	if item.Location == "" {
		item.Location = model.NoLocation
	}
	if err := s.validator.Check(item); err != nil {
		s.cfg.Log.Warn("Inventory item validation failed", "name", item.Name, "error", err)
		return nil, err
	}

	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		if item.Location != model.NoLocation && !snap.HasLocation(item.Location) {
			return nil, apperrors.Validation("Unknown storage location", map[string]any{"location": item.Location}).
				WithCause(inventoryerrors.ErrLocationNotFound)
		}
		snap.Inventory = append(snap.Inventory, item)
		return []model.Action{model.NewAction(model.ActionAddInventoryItem, model.ItemPayload{Data: item})}, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Inventory item added", "item_id", item.ID, "name", item.Name, "quantity", item.Quantity)
	return &item, nil
}

// UpdateQuantity changes the owned total. It refuses to drop below the
// units currently on loan or in repair.
func (s *inventoryService) UpdateQuantity(ctx context.Context, actor permission.Actor, id model.ID, quantity int) (*ItemView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if quantity < 0 || quantity > sanitizer.MaxQuantity {
		return nil, apperrors.Validation("Quantity out of range", map[string]any{"quantity": quantity})
	}

	var view ItemView
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindItem(id)
		if i < 0 {
			return nil, itemNotFound(id)
		}
		item := &snap.Inventory[i]
		committed := item.RentedCount() + item.RepairingCount()
		if quantity < committed {
			return nil, apperrors.Validation("Quantity is below units on loan or in repair",
				map[string]any{"quantity": quantity, "committed": committed}).
				WithCause(inventoryerrors.ErrQuantityBelowCommitted)
		}
		item.Quantity = quantity
		view = viewOf(item)
		return []model.Action{model.NewAction(model.ActionUpdateInventoryItem, model.ItemQuantityPayload{ID: id, Quantity: quantity})}, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Inventory quantity updated", "item_id", id, "quantity", quantity)
	return &view, nil
}

// DeleteItem drops an item with its rentals and repairs. Deleting an
// unknown item is a no-op.
func (s *inventoryService) DeleteItem(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
	if err := requireAdmin(actor); err != nil {
		return false, err
	}

	removed := false
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindItem(id)
		if i < 0 {
			return nil, nil
		}
		snap.Inventory = slices.Delete(snap.Inventory, i, i+1)
		removed = true
		return []model.Action{model.NewAction(model.ActionDeleteInventoryItem, model.IDPayload{ID: id})}, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.cfg.Log.Info("Inventory item deleted", "item_id", id)
	}
	return removed, nil
}
