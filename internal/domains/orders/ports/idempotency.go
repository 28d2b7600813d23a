package ports

import (
	"context"
	"errors"
	"time"
)

// MaxIdempotencyKeyLength bounds client keys to the width of the stored column.
const MaxIdempotencyKeyLength = 255

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload or order.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyKeyTooLong rejects keys the store cannot hold.
	ErrIdempotencyKeyTooLong = errors.New("idempotency key must be at most 255 characters")
)

// IdempotencyRecord associates a client-supplied key with the order it produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record; if the key already exists with the same hash and order, the stored record is returned.
	// When the key exists but points to a different request or order, ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// PurgeBefore deletes records created before cutoff and reports how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
