package state

import (
	"context"
	"sync"
)

// Receipt tracks the background send of one commit's actions.
type Receipt struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newReceipt() *Receipt {
	return &Receipt{done: make(chan struct{})}
}

func (r *Receipt) finish(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Err is the first send error. Only meaningful after Done is closed.
func (r *Receipt) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the actions were sent or ctx ends.
func (r *Receipt) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
