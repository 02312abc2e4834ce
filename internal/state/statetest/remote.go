// Package statetest provides an in-process remote store for tests.
package statetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"gymdesk/internal/state"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"
)

// Remote records every action it receives. SendFunc and FetchFunc override
// the default behavior when set.
type Remote struct {
	mu      sync.Mutex
	actions []model.Action

	Snap      *model.Snapshot
	SendFunc  func(ctx context.Context, action model.Action) error
	FetchFunc func(ctx context.Context) (*model.Snapshot, error)
}

func (r *Remote) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if r.FetchFunc != nil {
		return r.FetchFunc(ctx)
	}
	if r.Snap == nil {
		return model.NewSnapshot(), nil
	}
	return r.Snap.Clone(), nil
}

func (r *Remote) Send(ctx context.Context, action model.Action) error {
	r.mu.Lock()
	r.actions = append(r.actions, action)
	r.mu.Unlock()
	if r.SendFunc != nil {
		return r.SendFunc(ctx, action)
	}
	return nil
}

func (r *Remote) Actions() []model.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Names lists the received action names in order.
func (r *Remote) Names() []model.ActionName {
	var names []model.ActionName
	for _, a := range r.Actions() {
		names = append(names, a.Name)
	}
	return names
}

// Fixed is the clock used by NewStore.
var Fixed = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

// NewStore builds a store seeded with snap and registers cleanup. Call
// Flush on the returned store before asserting on remote actions.
func NewStore(t testing.TB, snap *model.Snapshot) (*state.Store, *Remote) {
	t.Helper()
	if snap == nil {
		snap = model.NewSnapshot()
	}
	remote := &Remote{Snap: snap}
	store := state.New(remote, nil, state.Options{
		Clock: func() time.Time { return Fixed },
	}, logger.Discard())

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load test snapshot: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store, remote
}

// Flush waits for queued actions and returns what the remote saw.
func Flush(t testing.TB, store *state.Store, remote *Remote) []model.ActionName {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return remote.Names()
}
