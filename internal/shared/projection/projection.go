// Package projection pairs aggregates with the timestamps assigned by storage.
package projection

import "time"

// Metadata captures persistence timestamps. Stores set both on create and bump UpdatedAt on writes.
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Projection is an aggregate plus its persistence metadata. It is also the
// payload returned by workflow activities, hence the JSON tags.
type Projection[T any] struct {
	Entity   T        `json:"entity"`
	Metadata Metadata `json:"metadata"`
}

// New wraps entity with metadata.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt}}
}
