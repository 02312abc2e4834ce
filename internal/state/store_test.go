package state_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gymdesk/internal/mirror"
	"gymdesk/internal/state"
	"gymdesk/internal/state/statetest"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/middleware"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("remote down")

func TestCommitAppliesLocallyAndSendsInOrder(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)

	for _, name := range []string{"배구공", "줄넘기"} {
		_, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
			item := model.InventoryItem{ID: model.ID(name), Name: name, Location: "체육전담실", Quantity: 5}
			snap.Inventory = append(snap.Inventory, item)
			return []model.Action{
				model.NewAction(model.ActionAddInventoryItem, model.ItemPayload{Data: item}),
				store.RecordActivity(snap, name+" 추가"),
			}, nil
		})
		require.NoError(t, err)
	}

	store.View(func(snap *model.Snapshot) {
		assert.Len(t, snap.Inventory, 2)
		require.Len(t, snap.ActivityLogs, 2)
		assert.Equal(t, "줄넘기 추가", snap.ActivityLogs[0].Message)
	})

	assert.Equal(t, []model.ActionName{
		model.ActionAddInventoryItem, model.ActionLogActivity,
		model.ActionAddInventoryItem, model.ActionLogActivity,
	}, statetest.Flush(t, store, remote))
}

func TestConcurrentCommitsSendInApplyOrder(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)

	const (
		workers = 8
		commits = 200
	)
	seq := 0

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < commits; i++ {
				_, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
					seq++
					return []model.Action{model.NewAction(model.ActionLogActivity, seq)}, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	statetest.Flush(t, store, remote)

	actions := remote.Actions()
	require.Len(t, actions, workers*commits)
	for i, action := range actions {
		require.Equal(t, i+1, action.Payload, "action %d sent out of apply order", i)
	}
}

func TestCommitQueuesAppliedMutationAfterCancel(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	receipt, err := store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "취소 후"
		cancel()
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: "취소 후"})}, nil
	})
	require.NoError(t, err)
	require.NoError(t, receipt.Wait(context.Background()))
	assert.Equal(t, []model.ActionName{model.ActionUpdateGreeting}, statetest.Flush(t, store, remote))
}

func TestSenderKeepsRequestValues(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)
	var seen []string
	remote.SendFunc = func(ctx context.Context, action model.Action) error {
		seen = append(seen, middleware.RequestID(ctx))
		return nil
	}

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), middleware.RequestIDKey, "req-3"))
	_, err := store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "봄"
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: "봄"})}, nil
	})
	require.NoError(t, err)
	cancel()

	statetest.Flush(t, store, remote)
	assert.Equal(t, []string{"req-3"}, seen)
}

func TestCommitWithCancelledContextAppliesNothing(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "never"
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: "never"})}, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Snapshot().Greeting)
	assert.Empty(t, statetest.Flush(t, store, remote))
}

func TestCommitRejectedMutationSendsNothing(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)
	rejected := errors.New("not enough units")

	receipt, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
		return nil, rejected
	})
	assert.ErrorIs(t, err, rejected)
	assert.Nil(t, receipt)
	assert.Empty(t, statetest.Flush(t, store, remote))
}

func TestRemoteFailureKeepsLocalState(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)
	remote.SendFunc = func(ctx context.Context, action model.Action) error { return errDown }

	receipt, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "새 학기"
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: "새 학기"})}, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, receipt.Wait(ctx), errDown)
	assert.ErrorIs(t, receipt.Err(), errDown)

	assert.Equal(t, "새 학기", store.Snapshot().Greeting)
}

func TestRecordActivityUsesSchoolTime(t *testing.T) {
	store, _ := statetest.NewStore(t, nil)

	_, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
		a := store.RecordActivity(snap, "hello")
		payload := a.Payload.(model.ActivityPayload)
		assert.Equal(t, "2026-03-04 18:30:00", payload.Timestamp)
		return []model.Action{a}, nil
	})
	require.NoError(t, err)
}

func TestActivityLogIsCapped(t *testing.T) {
	store, _ := statetest.NewStore(t, nil)

	for i := 0; i < model.DefaultActivityLimit+5; i++ {
		_, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
			return []model.Action{store.RecordActivity(snap, fmt.Sprintf("entry %d", i))}, nil
		})
		require.NoError(t, err)
	}

	snap := store.Snapshot()
	require.Len(t, snap.ActivityLogs, model.DefaultActivityLimit)
	assert.Equal(t, fmt.Sprintf("entry %d", model.DefaultActivityLimit+4), snap.ActivityLogs[0].Message)
}

func TestLoadFallsBackToMirror(t *testing.T) {
	m, err := mirror.Open(mirror.InMemoryConfig(), logger.Discard())
	require.NoError(t, err)
	defer m.Close()

	cached := model.NewSnapshot()
	cached.Greeting = "cached"
	require.NoError(t, m.Save(cached))

	remote := &statetest.Remote{
		FetchFunc: func(ctx context.Context) (*model.Snapshot, error) { return nil, errDown },
	}
	store := state.New(remote, m, state.Options{}, logger.Discard())
	defer store.Close(context.Background())

	source, err := store.Load(context.Background())
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, state.SourceMirror, source)
	assert.Equal(t, "cached", store.Snapshot().Greeting)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	remote := &statetest.Remote{
		FetchFunc: func(ctx context.Context) (*model.Snapshot, error) { return nil, errDown },
	}
	store := state.New(remote, nil, state.Options{}, logger.Discard())
	defer store.Close(context.Background())

	source, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, state.SourceDefault, source)
	assert.Equal(t, model.DefaultLocations, store.Snapshot().Locations)
}

func TestLoadWritesMirror(t *testing.T) {
	m, err := mirror.Open(mirror.InMemoryConfig(), logger.Discard())
	require.NoError(t, err)
	defer m.Close()

	snap := model.NewSnapshot()
	snap.Greeting = "from remote"
	store := state.New(&statetest.Remote{Snap: snap}, m, state.Options{}, logger.Discard())
	defer store.Close(context.Background())

	source, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.SourceRemote, source)

	cached, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "from remote", cached.Greeting)
}

func TestRefreshFailureKeepsState(t *testing.T) {
	store, remote := statetest.NewStore(t, nil)

	_, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "local"
		return nil, nil
	})
	require.NoError(t, err)

	remote.FetchFunc = func(ctx context.Context) (*model.Snapshot, error) { return nil, errDown }
	assert.ErrorIs(t, store.Refresh(context.Background()), errDown)
	assert.Equal(t, "local", store.Snapshot().Greeting)
}

func TestCommitAfterClose(t *testing.T) {
	store := state.New(&statetest.Remote{}, nil, state.Options{}, logger.Discard())
	require.NoError(t, store.Close(context.Background()))

	receipt, err := store.Commit(context.Background(), func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = "late"
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: "late"})}, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, receipt.Wait(context.Background()), state.ErrClosed)
}
