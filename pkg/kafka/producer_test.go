package kafka

import (
	"context"
	"errors"
	"testing"

	"gymdesk/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	writeFunc func(msgs ...kafka.Message) error
	written   []kafka.Message
	closed    bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.writeFunc != nil {
		if err := f.writeFunc(msgs...); err != nil {
			return err
		}
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("item-1").
		WithValue(map[string]any{"action": "addRental"}).
		WithEventType("addRental").
		WithSource("sheetstore").
		Build()
	require.NoError(t, err)
	return msg
}

func TestBuildFillsEventHeaders(t *testing.T) {
	msg := buildMessage(t)

	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "addRental", msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	assert.Empty(t, msg.GetCorrelationID())
	assert.JSONEq(t, `{"action":"addRental"}`, string(msg.Value))
}

func TestBuildKeepsCorrelationID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithCorrelationID("req-7").Build()
	require.NoError(t, err)
	assert.Equal(t, "req-7", msg.GetCorrelationID())
}

func TestBuildRejectsUnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestPublishRunsMiddlewareInOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "gymdesk.actions", "", logger.Discard())

	var order []string
	for _, name := range []string{"outer", "inner"} {
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"outer", "inner"}, order)
	require.Len(t, w.written, 1)
	assert.Equal(t, "item-1", string(w.written[0].Key))
}

func TestPublishValidates(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "gymdesk.actions", "", logger.Discard())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}

func TestTransientFailureGoesToDLQ(t *testing.T) {
	w := &fakeWriter{writeFunc: func(...kafka.Message) error { return errors.New("dial tcp: connection refused") }}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "gymdesk.actions", "gymdesk.actions.dlq", logger.Discard())

	err := p.Publish(context.Background(), buildMessage(t))
	require.Error(t, err)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "gymdesk.actions", header(dlq.written[0], HeaderOriginalTopic))
	assert.Contains(t, header(dlq.written[0], HeaderDLQError), "connection refused")
}

func TestPermanentFailureSkipsDLQ(t *testing.T) {
	w := &fakeWriter{writeFunc: func(...kafka.Message) error { return errors.New("unknown topic or partition") }}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "gymdesk.actions", "gymdesk.actions.dlq", logger.Discard())

	require.Error(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Empty(t, dlq.written)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("i/o timeout")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(ErrEmptyKey))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("retry", nil)))
}
