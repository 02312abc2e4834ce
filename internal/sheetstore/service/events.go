package service

import (
	"context"

	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/kafka"
	"gymdesk/pkg/middleware"
	"gymdesk/pkg/model"
)

const eventSchemaVersion = "1"

type actionEvent struct {
	Action    model.ActionName `json:"action"`
	Payload   any              `json:"payload"`
	AppliedAt string           `json:"appliedAt"`
}

// publish emits the applied action, correlated with the request that
// carried it. The sheet write already happened, so a publish failure is
// only logged.
func (s *sheetService) publish(ctx context.Context, action model.ActionName, key string, payload any) {
	if s.events == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(actionEvent{Action: action, Payload: payload, AppliedAt: s.timestamp()}).
		WithEventType(string(action)).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(s.cfg.Service).
		WithTimestamp(s.now()).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build action event", "action", action, "error", err)
		return
	}

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish action event",
			"action", action,
			"key", key,
			"event_id", msg.GetEventID(),
			"error", err,
		)
	}
}

func invalidField(field, reason string) error {
	return apperrors.Validation("Invalid action payload", map[string]any{field: reason})
}
