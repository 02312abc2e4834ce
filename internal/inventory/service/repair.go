package service

import (
	"context"
	"fmt"
	"strings"

	inventoryerrors "gymdesk/internal/inventory/errors"
	"gymdesk/internal/permission"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
)

// RequestRepair files a repair ticket. The units leave circulation as soon
// as the ticket exists.
func (s *inventoryService) RequestRepair(ctx context.Context, actor permission.Actor, itemID model.ID, count int, memo string) (*model.Repair, error) {
	if actor.ID == "" {
		return nil, apperrors.Unauthorized("Login required")
	}
	if err := validateCount(count); err != nil {
		return nil, err
	}

	requester := actor.ID
	if name := strings.TrimSpace(actor.Name); name != "" {
		requester = actor.ID + " " + name
	}

	repair := model.Repair{
		ID:        model.NewID(),
		ItemID:    itemID,
		Count:     count,
		Date:      s.store.Today(),
		Requester: requester,
		Memo:      sanitizer.NormalizeText(memo),
		Status:    model.RepairPending,
	}
	if err := s.validator.Check(repair); err != nil {
		return nil, err
	}

	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindItem(itemID)
		if i < 0 {
			return nil, itemNotFound(itemID)
		}
		item := &snap.Inventory[i]
		if count > item.Available() {
			return nil, insufficient(item, count)
		}
		item.Repairs = append(item.Repairs, repair)
		return []model.Action{model.NewAction(model.ActionAddRepair, model.RepairPayload{Data: repair})}, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Repair requested", "repair_id", repair.ID, "item_id", itemID, "count", count, "requester", requester)
	return &repair, nil
}

// UpdateRepairStatus moves a ticket forward. Setting the current status
// again only updates the admin memo. Any move back, 대기 included, fails
// with ErrInvalidTransition; reopened work needs a new ticket.
func (s *inventoryService) UpdateRepairStatus(ctx context.Context, actor permission.Actor, repairID model.ID, status model.RepairStatus, adminMemo string) (*model.Repair, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.Validation("Unknown repair status", map[string]any{"status": int(status)})
	}
	adminMemo = sanitizer.NormalizeText(adminMemo)

	var repair model.Repair
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i, r := snap.FindRepair(repairID)
		if i < 0 {
			return nil, apperrors.NotFoundWithID("Repair", repairID.String()).WithCause(inventoryerrors.ErrRepairNotFound)
		}
		item := &snap.Inventory[i]
		current := &item.Repairs[r]
		if status < current.Status {
			return nil, apperrors.Conflict(
				fmt.Sprintf("Repair cannot move from %s back to %s", current.Status, status),
			).WithCause(inventoryerrors.ErrInvalidTransition)
		}

		changed := status != current.Status
		current.Status = status
		current.AdminMemo = adminMemo
		repair = *current

		actions := []model.Action{model.NewAction(model.ActionUpdateRepair, model.RepairUpdatePayload{
			ID:        repairID,
			Status:    status,
			AdminMemo: adminMemo,
		})}
		if !changed {
			return actions, nil
		}

		switch status {
		case model.RepairInProgress:
			msg := fmt.Sprintf("%s %d개가 수리중입니다. (잔여 수량:%d개)", item.Name, current.Count, item.Available())
			actions = append(actions, s.store.RecordActivity(snap, msg))
		case model.RepairDone:
			msg := fmt.Sprintf("%s %d개의 수리가 완료되었습니다. (잔여수량:%d개)", item.Name, current.Count, item.Available())
			actions = append(actions, s.store.RecordActivity(snap, msg))
		}
		return actions, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Repair updated", "repair_id", repairID, "status", status.String())
	return &repair, nil
}

// ListRepairs lists tickets across items, filtered by status when one is
// given.
func (s *inventoryService) ListRepairs(status model.RepairStatus) []RepairView {
	out := []RepairView{}
	s.store.View(func(snap *model.Snapshot) {
		for _, item := range snap.Inventory {
			for _, r := range item.Repairs {
				if status != 0 && r.Status != status {
					continue
				}
				out = append(out, RepairView{Repair: r, ItemName: item.Name})
			}
		}
	})
	return out
}
