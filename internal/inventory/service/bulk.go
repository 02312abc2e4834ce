package service

import (
	"context"
	"fmt"

	"gymdesk/internal/permission"
	"gymdesk/internal/state"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"

	"golang.org/x/time/rate"
)

type BulkLine struct {
	ItemID model.ID `json:"item_id"`
	Count  int      `json:"count"`
}

type BulkFailure struct {
	ItemID model.ID `json:"item_id"`
	Count  int      `json:"count"`
	Error  string   `json:"error"`
}

type BulkSummary struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []BulkFailure `json:"failures"`
}

type bulkKind struct {
	verb string
	op   func(ctx context.Context, line BulkLine) (model.ID, *state.Receipt, error)
}

func (s *inventoryService) BulkRent(ctx context.Context, actor permission.Actor, borrower string, lines []BulkLine) (*BulkSummary, error) {
	return s.bulk(ctx, actor, borrower, lines, bulkKind{
		verb: "대여",
		op: func(ctx context.Context, line BulkLine) (model.ID, *state.Receipt, error) {
			rental, receipt, err := s.rent(ctx, actor, line.ItemID, borrower, line.Count)
			if err != nil {
				return "", nil, err
			}
			return rental.ItemID, receipt, nil
		},
	})
}

func (s *inventoryService) BulkReturn(ctx context.Context, actor permission.Actor, borrower string, lines []BulkLine) (*BulkSummary, error) {
	return s.bulk(ctx, actor, borrower, lines, bulkKind{
		verb: "반납",
		op: func(ctx context.Context, line BulkLine) (model.ID, *state.Receipt, error) {
			result, receipt, err := s.returnPartial(ctx, actor, line.ItemID, borrower, line.Count)
			if err != nil {
				return "", nil, err
			}
			return result.ItemID, receipt, nil
		},
	})
}

// bulk runs one operation per line, paced by the configured delay. A line
// fails on its own when either the local check or the remote persist
// fails; the remaining lines still run.
func (s *inventoryService) bulk(ctx context.Context, actor permission.Actor, borrower string, lines []BulkLine, kind bulkKind) (*BulkSummary, error) {
	class, err := borrowerFor(actor, borrower)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperrors.Validation("At least one line is required", map[string]any{"lines": 0})
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.cfg.BulkOperationDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.cfg.BulkOperationDelay), 1)
	}

	summary := &BulkSummary{Failures: []BulkFailure{}}
	var firstItem model.ID

	for _, line := range lines {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		itemID, receipt, err := kind.op(ctx, line)
		if err == nil {
			err = receipt.Wait(ctx)
		}
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, BulkFailure{ItemID: line.ItemID, Count: line.Count, Error: err.Error()})
			s.cfg.Log.Warn("Bulk line failed", "kind", kind.verb, "item_id", line.ItemID, "count", line.Count, "error", err)
			continue
		}

		if summary.Succeeded == 0 {
			firstItem = itemID
		}
		summary.Succeeded++
	}

	if summary.Succeeded > 0 {
		if _, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
			name := firstItem.String()
			if i := snap.FindItem(firstItem); i >= 0 {
				name = snap.Inventory[i].Name
			}
			msg := fmt.Sprintf("%s에서 %s을(를) 일괄 %s하였습니다.", class, name, kind.verb)
			if summary.Succeeded > 1 {
				msg = fmt.Sprintf("%s에서 %s 외 %d건을 일괄 %s하였습니다.", class, name, summary.Succeeded-1, kind.verb)
			}
			return []model.Action{s.store.RecordActivity(snap, msg)}, nil
		}); err != nil {
			return nil, err
		}
	}

	s.cfg.Log.Info("Bulk operation finished",
		"kind", kind.verb,
		"class", class,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}
