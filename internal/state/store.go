// Package state owns the in-memory model every service works against.
//
// Mutations follow a two-phase contract. Commit applies a mutation to the
// snapshot synchronously under the write lock and hands the resulting
// remote actions to a single background sender, which persists them in
// commit order. A failed send is logged and counted but never rolls back
// the local change and is never retried: local state stays the effective
// truth until the next Refresh. Other clients of the remote store can still
// race with this process; only this process's own check-then-apply is
// atomic.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymdesk/pkg/dates"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	queueSize       = 1024
)

var ErrClosed = errors.New("state store is closed")

type RemoteStore interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
	Send(ctx context.Context, action model.Action) error
}

type Mirror interface {
	Save(snap *model.Snapshot) error
	Load() (*model.Snapshot, error)
}

// Source tells where the current snapshot was loaded from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceMirror
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceMirror:
		return "mirror"
	case SourceDefault:
		return "default"
	default:
		return "none"
	}
}

// Mutation changes snap in place and returns the actions that persist the
// change. It must check every precondition before touching snap: a
// mutation that returns an error must leave snap unchanged.
type Mutation func(snap *model.Snapshot) ([]model.Action, error)

type Options struct {
	ActivityLimit int
	Clock         func() time.Time
}

type job struct {
	// ctx carries the committing request's values without its cancellation.
	ctx     context.Context
	actions []model.Action
	mirror  *model.Snapshot
	receipt *Receipt
}

type Store struct {
	mu     sync.RWMutex
	snap   *model.Snapshot
	source Source

	remote RemoteStore
	mirror Mirror
	opts   Options
	log    *logger.Logger

	queueMu sync.Mutex
	queue   chan job
	closed  bool
	done    chan struct{}
}

// New starts the background sender. mirror may be nil.
func New(remote RemoteStore, mirror Mirror, opts Options, log *logger.Logger) *Store {
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = model.DefaultActivityLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		snap:   model.NewSnapshot(),
		remote: remote,
		mirror: mirror,
		opts:   opts,
		log:    log.Component("state"),
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
	}
	go s.send()
	return s
}

// Load fetches the remote snapshot. When the store is unreachable it falls
// back to the local mirror, then to an empty snapshot; the remote error is
// returned alongside the fallback source.
func (s *Store) Load(ctx context.Context) (Source, error) {
	snap, err := s.remote.FetchSnapshot(ctx)
	if err == nil {
		s.replace(snap, SourceRemote)
		s.saveMirror(snap.Clone())
		s.log.Info("Snapshot loaded from remote store",
			"bookings", len(snap.WeeklySchedule),
			"items", len(snap.Inventory),
		)
		return SourceRemote, nil
	}

	s.log.Warn("Remote store unreachable, falling back to local mirror", "error", err)

	if s.mirror != nil {
		cached, mirrorErr := s.mirror.Load()
		if mirrorErr == nil {
			s.replace(cached, SourceMirror)
			s.log.Info("Snapshot loaded from local mirror")
			return SourceMirror, err
		}
		s.log.Warn("Local mirror unavailable", "error", mirrorErr)
	}

	s.replace(model.NewSnapshot(), SourceDefault)
	return SourceDefault, err
}

// Refresh waits for queued actions to be sent, then replaces local state
// with a fresh remote snapshot. On failure the current state is kept.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}

	snap, err := s.remote.FetchSnapshot(ctx)
	if err != nil {
		s.log.Warn("Refresh failed, keeping local state", "error", err)
		return fmt.Errorf("refresh: %w", err)
	}

	s.replace(snap, SourceRemote)
	s.saveMirror(snap.Clone())
	s.log.Info("Snapshot refreshed from remote store")
	return nil
}

func (s *Store) replace(snap *model.Snapshot, source Source) {
	snap.Normalize()
	if len(snap.ActivityLogs) > s.opts.ActivityLimit {
		snap.ActivityLogs = snap.ActivityLogs[:s.opts.ActivityLimit]
	}
	s.mu.Lock()
	s.snap = snap
	s.source = source
	s.mu.Unlock()
}

func (s *Store) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// View runs fn under the read lock. fn must not keep references into snap.
func (s *Store) View(fn func(snap *model.Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.snap)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Commit applies m locally and queues its actions for the remote store.
// The returned receipt completes once those actions have been sent; most
// callers ignore it. ctx is only checked before the mutation runs: once
// applied, a mutation is always queued.
func (s *Store) Commit(ctx context.Context, m Mutation) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := m(s.snap)
	if err != nil {
		return nil, err
	}

	j := job{ctx: context.WithoutCancel(ctx), actions: actions, receipt: newReceipt()}
	if s.mirror != nil {
		j.mirror = s.snap.Clone()
	}
	// Queued under mu so the sender sees jobs in apply order.
	return s.enqueue(context.Background(), j), nil
}

// RecordActivity prepends a log entry to snap and returns the action that
// persists it. Call it from inside a Mutation.
func (s *Store) RecordActivity(snap *model.Snapshot, message string) model.Action {
	entry := model.ActivityLog{
		Timestamp: s.opts.Clock().In(dates.School).Format(timestampLayout),
		Message:   message,
	}
	snap.PrependActivity(entry, s.opts.ActivityLimit)
	return model.NewAction(model.ActionLogActivity, model.ActivityPayload{
		Message:   entry.Message,
		Timestamp: entry.Timestamp,
	})
}

// Today is the current school date by the store's clock.
func (s *Store) Today() dates.Date {
	return dates.Of(s.opts.Clock())
}

// Flush blocks until every action committed so far has been sent.
func (s *Store) Flush(ctx context.Context) error {
	r := s.enqueue(ctx, job{receipt: newReceipt()})
	return r.Wait(ctx)
}

// Close stops accepting work and waits for the queue to drain.
func (s *Store) Close(ctx context.Context) error {
	s.queueMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.queueMu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) enqueue(ctx context.Context, j job) *Receipt {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if s.closed {
		s.log.Warn("Dropping remote sync after close", "actions", len(j.actions))
		j.receipt.finish(ErrClosed)
		return j.receipt
	}

	select {
	case s.queue <- j:
	case <-ctx.Done():
		j.receipt.finish(ctx.Err())
	}
	return j.receipt
}

func (s *Store) send() {
	defer close(s.done)

	for j := range s.queue {
		ctx := j.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		var firstErr error
		for _, action := range j.actions {
			if err := s.remote.Send(ctx, action); err != nil {
				s.log.Warn("Remote sync failed, local state kept",
					"action", action.Name,
					"error", err,
				)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if j.mirror != nil {
			s.saveMirror(j.mirror)
		}
		j.receipt.finish(firstErr)
	}
}

func (s *Store) saveMirror(snap *model.Snapshot) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Save(snap); err != nil {
		s.log.Warn("Failed to update local mirror", "error", err)
	}
}
