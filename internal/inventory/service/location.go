package service

import (
	"context"
	"slices"

	inventoryerrors "gymdesk/internal/inventory/errors"
	"gymdesk/internal/permission"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
)

func (s *inventoryService) Locations() []string {
	var out []string
	s.store.View(func(snap *model.Snapshot) {
		out = slices.Clone(snap.Locations)
	})
	return out
}

func validLocation(name string) error {
	if name == "" || name == model.NoLocation || len([]rune(name)) > 100 {
		return apperrors.Validation("Invalid location name", map[string]any{"location": name})
	}
	return nil
}

func (s *inventoryService) AddLocation(ctx context.Context, actor permission.Actor, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	name = sanitizer.NormalizeLocation(name)
	if err := validLocation(name); err != nil {
		return err
	}

	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		if snap.HasLocation(name) {
			return nil, apperrors.Conflict("Location already exists").WithCause(inventoryerrors.ErrLocationExists)
		}
		snap.Locations = append(snap.Locations, name)
		return []model.Action{model.NewAction(model.ActionAddLocation, model.LocationPayload{Location: name})}, nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Location added", "location", name)
	return nil
}

// DeleteLocation removes a storage location and moves every item stored
// there to model.NoLocation. It returns how many items moved.
func (s *inventoryService) DeleteLocation(ctx context.Context, actor permission.Actor, name string) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	name = sanitizer.NormalizeLocation(name)

	moved := 0
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := slices.Index(snap.Locations, name)
		if i < 0 {
			return nil, apperrors.NotFoundWithID("Location", name).WithCause(inventoryerrors.ErrLocationNotFound)
		}
		snap.Locations = slices.Delete(snap.Locations, i, i+1)
		for n := range snap.Inventory {
			if snap.Inventory[n].Location == name {
				snap.Inventory[n].Location = model.NoLocation
				moved++
			}
		}
		return []model.Action{model.NewAction(model.ActionDeleteLocation, model.LocationPayload{Location: name})}, nil
	})
	if err != nil {
		return 0, err
	}

	s.cfg.Log.Info("Location deleted", "location", name, "items_moved", moved)
	return moved, nil
}

// MoveItems sets the storage location of several items at once. Unknown
// item ids are skipped.
func (s *inventoryService) MoveItems(ctx context.Context, actor permission.Actor, ids []model.ID, location string) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	location = sanitizer.NormalizeLocation(location)
	if len(ids) == 0 {
		return 0, apperrors.Validation("At least one item is required", map[string]any{"ids": 0})
	}

	moved := 0
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		if location != model.NoLocation && !snap.HasLocation(location) {
			return nil, apperrors.Validation("Unknown storage location", map[string]any{"location": location}).
				WithCause(inventoryerrors.ErrLocationNotFound)
		}
		found := make([]model.ID, 0, len(ids))
		for _, id := range ids {
			if i := snap.FindItem(id); i >= 0 {
				snap.Inventory[i].Location = location
				found = append(found, id)
			}
		}
		moved = len(found)
		if moved == 0 {
			return nil, nil
		}
		return []model.Action{model.NewAction(model.ActionUpdateBulkLocation, model.BulkLocationPayload{
			IDs:         found,
			NewLocation: location,
		})}, nil
	})
	if err != nil {
		return 0, err
	}

	s.cfg.Log.Info("Items moved", "location", location, "count", moved)
	return moved, nil
}
