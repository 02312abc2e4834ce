package service

import (
	"context"

	"gymdesk/pkg/model"
)

func (s *sheetService) addBooking(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.BookingPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p.Data); err != nil {
		return nil, err
	}
	if err := s.repo.InsertBooking(ctx, p.Data); err != nil {
		return nil, storeError(err, "booking")
	}
	s.publish(ctx, model.ActionAddBooking, p.Data.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) approveBooking(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.IDPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApproveBooking(ctx, p.ID); err != nil {
		return nil, storeError(err, "booking")
	}
	s.publish(ctx, model.ActionApproveBooking, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) deleteBooking(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.IDPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteBooking(ctx, p.ID); err != nil {
		return nil, storeError(err, "booking")
	}
	s.publish(ctx, model.ActionDeleteBooking, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) replaceBaseSchedule(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.BaseSchedulePayload](body)
	if err != nil {
		return nil, err
	}
	for _, entry := range p.Schedule {
		if err := s.validator.Check(entry); err != nil {
			return nil, err
		}
	}
	if err := s.repo.ReplaceBaseSchedule(ctx, p.Schedule); err != nil {
		return nil, storeError(err, "base schedule")
	}
	s.publish(ctx, model.ActionReplaceBaseSchedule, "base_schedule", p)
	return ack(), nil
}

func (s *sheetService) addItem(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ItemPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p.Data); err != nil {
		return nil, err
	}
	if err := s.repo.InsertItem(ctx, p.Data); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionAddInventoryItem, p.Data.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) updateItem(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ItemQuantityPayload](body)
	if err != nil {
		return nil, err
	}
	if p.Quantity < 0 {
		return nil, invalidField("quantity", "must not be negative")
	}
	if err := s.repo.UpdateItemQuantity(ctx, p.ID, p.Quantity); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionUpdateInventoryItem, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) deleteItem(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.IDPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, p.ID); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionDeleteInventoryItem, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) addRental(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RentalPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p.Data); err != nil {
		return nil, err
	}
	if err := s.repo.AddRental(ctx, p.Data); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionAddRental, p.Data.ItemID.String(), p)
	return ack(), nil
}

func (s *sheetService) returnItem(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ReturnPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReturnRental(ctx, p.RentalID); err != nil {
		return nil, storeError(err, "rental")
	}
	s.publish(ctx, model.ActionReturnItem, p.RentalID.String(), p)
	return ack(), nil
}

func (s *sheetService) partialReturn(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.PartialReturnPayload](body)
	if err != nil {
		return nil, err
	}
	if p.Count <= 0 {
		return nil, invalidField("count", "must be positive")
	}
	if len(p.Returned) == 0 && p.Split == nil {
		return nil, invalidField("returnedIds", "nothing to return")
	}
	if p.Split != nil {
		if p.Split.Remaining <= 0 {
			return nil, invalidField("split.remaining", "must be positive")
		}
		if err := s.validator.Check(p.Split.Returned); err != nil {
			return nil, err
		}
	}
	if err := s.repo.ApplyPartialReturn(ctx, p); err != nil {
		return nil, storeError(err, "rental")
	}
	s.publish(ctx, model.ActionPartialReturn, p.ItemID.String(), p)
	return ack(), nil
}

func (s *sheetService) addRepair(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RepairPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p.Data); err != nil {
		return nil, err
	}
	if err := s.repo.AddRepair(ctx, p.Data); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionAddRepair, p.Data.ItemID.String(), p)
	return ack(), nil
}

func (s *sheetService) updateRepair(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RepairUpdatePayload](body)
	if err != nil {
		return nil, err
	}
	if !p.Status.Valid() {
		return nil, invalidField("status", "unknown repair status")
	}
	if err := s.repo.UpdateRepair(ctx, p.ID, p.Status, p.AdminMemo); err != nil {
		return nil, storeError(err, "repair")
	}
	s.publish(ctx, model.ActionUpdateRepair, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) addLocation(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.LocationPayload](body)
	if err != nil {
		return nil, err
	}
	if p.Location == "" {
		return nil, invalidField("location", "required")
	}
	if err := s.repo.AddLocation(ctx, p.Location); err != nil {
		return nil, storeError(err, "location")
	}
	s.publish(ctx, model.ActionAddLocation, p.Location, p)
	return ack(), nil
}

func (s *sheetService) deleteLocation(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.LocationPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLocation(ctx, p.Location); err != nil {
		return nil, storeError(err, "location")
	}
	s.publish(ctx, model.ActionDeleteLocation, p.Location, p)
	return ack(), nil
}

func (s *sheetService) moveItems(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.BulkLocationPayload](body)
	if err != nil {
		return nil, err
	}
	if p.NewLocation == "" {
		return nil, invalidField("newLocation", "required")
	}
	if len(p.IDs) == 0 {
		return ack(), nil
	}
	if err := s.repo.MoveItems(ctx, p.IDs, p.NewLocation); err != nil {
		return nil, storeError(err, "item")
	}
	s.publish(ctx, model.ActionUpdateBulkLocation, p.NewLocation, p)
	return ack(), nil
}

func (s *sheetService) addRequest(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RequestPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p.Data); err != nil {
		return nil, err
	}
	if err := s.repo.InsertRequest(ctx, p.Data); err != nil {
		return nil, storeError(err, "request")
	}
	s.publish(ctx, model.ActionAddRequest, p.Data.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) updateRequest(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RequestUpdatePayload](body)
	if err != nil {
		return nil, err
	}
	if !p.Status.Valid() {
		return nil, invalidField("status", "unknown request status")
	}
	if err := s.repo.UpdateRequest(ctx, p.ID, p.Status, p.Memo); err != nil {
		return nil, storeError(err, "request")
	}
	s.publish(ctx, model.ActionUpdateRequest, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) deleteRequest(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.IDPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteRequest(ctx, p.ID); err != nil {
		return nil, storeError(err, "request")
	}
	s.publish(ctx, model.ActionDeleteRequest, p.ID.String(), p)
	return ack(), nil
}

func (s *sheetService) logActivity(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ActivityPayload](body)
	if err != nil {
		return nil, err
	}
	if p.Message == "" {
		return nil, invalidField("message", "required")
	}
	entry := model.ActivityLog{Timestamp: p.Timestamp, Message: p.Message}
	if entry.Timestamp == "" {
		entry.Timestamp = s.timestamp()
	}
	if err := s.repo.AppendActivity(ctx, entry, s.cfg.ActivityLogRetention); err != nil {
		return nil, storeError(err, "activity log")
	}
	s.publish(ctx, model.ActionLogActivity, "activity", entry)
	return ack(), nil
}

func (s *sheetService) updateGreeting(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.GreetingPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetGreeting(ctx, p.Text); err != nil {
		return nil, storeError(err, "greeting")
	}
	s.publish(ctx, model.ActionUpdateGreeting, "greeting", p)
	return ack(), nil
}
