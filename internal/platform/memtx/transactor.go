// Package memtx provides all-or-nothing units of work over in-memory adapters.
package memtx

import (
	"context"
	"sync"
)

// Participant is an in-memory store that can snapshot its state. Checkpoint
// returns a function restoring the state captured at the time of the call.
type Participant interface {
	Checkpoint() (restore func())
}

type txKey struct{}

// Transactor serializes units of work and restores every participant when one fails.
// A rollback restores whole snapshots, so every write to a participant must run
// inside WithinTransaction.
type Transactor struct {
	mu           sync.Mutex
	participants []Participant
}

// New builds a transactor over the given participants.
func New(participants ...Participant) *Transactor {
	return &Transactor{participants: participants}
}

// WithinTransaction runs fn exclusively. Nested calls join the outer unit of work.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(txKey{}).(*Transactor); ok && owner == t {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), 0, len(t.participants))
	for _, p := range t.participants {
		restores = append(restores, p.Checkpoint())
	}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}
