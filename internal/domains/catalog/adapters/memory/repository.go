package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

type productRecord struct {
	product   domain.Product
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory catalog adapter. It takes part in memtx transactions through Checkpoint.
type Repository struct {
	mu       sync.RWMutex
	products map[string]productRecord
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[string]productRecord{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*projection.Projection[*domain.Product], error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.products {
		if id != clone.ID && strings.EqualFold(rec.product.Name, clone.Name) {
			return nil, ports.ErrNameInUse
		}
	}
	now := r.now()
	rec, ok := r.products[clone.ID]
	if !ok {
		rec.createdAt = now
	}
	rec.product = clone
	rec.updatedAt = now
	r.products[clone.ID] = rec
	return rec.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.products[strings.TrimSpace(id)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return rec.projection(), nil
}

func (r *Repository) GetByName(_ context.Context, name string) (*projection.Projection[*domain.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, rec := range r.products {
		if strings.EqualFold(rec.product.Name, name) {
			return rec.projection(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Product], 0, len(r.products))
	for _, rec := range r.products {
		list = append(list, rec.projection())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.Name < list[j].Entity.Name })
	return list, nil
}

func (r *Repository) FindAllByID(_ context.Context, ids []string) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(ids))
	result := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rec, ok := r.products[id]
		if !ok {
			continue
		}
		clone := rec.product
		result = append(result, &clone)
	}
	return result, nil
}

func (r *Repository) UpdateQuantity(_ context.Context, products []*domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		if p == nil {
			continue
		}
		if _, ok := r.products[p.ID]; !ok {
			return ports.ErrNotFound
		}
		if p.Quantity < 0 {
			return domain.ErrNegativeQuantity
		}
	}
	now := r.now()
	for _, p := range products {
		if p == nil {
			continue
		}
		rec := r.products[p.ID]
		rec.product.Quantity = p.Quantity
		rec.updatedAt = now
		r.products[p.ID] = rec
	}
	return nil
}

func (r *Repository) IncreaseQuantity(_ context.Context, id string, amount int) (*projection.Projection[*domain.Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.products[strings.TrimSpace(id)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := rec.product.Restock(amount); err != nil {
		return nil, err
	}
	rec.updatedAt = r.now()
	r.products[rec.product.ID] = rec
	return rec.projection(), nil
}

// Checkpoint snapshots the catalog for memtx rollbacks.
func (r *Repository) Checkpoint() func() {
	r.mu.RLock()
	saved := make(map[string]productRecord, len(r.products))
	for id, rec := range r.products {
		saved[id] = rec
	}
	r.mu.RUnlock()
	return func() {
		r.mu.Lock()
		r.products = saved
		r.mu.Unlock()
	}
}

// Reset drops every product.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = map[string]productRecord{}
}

func (rec productRecord) projection() *projection.Projection[*domain.Product] {
	clone := rec.product
	return projection.New(&clone, rec.createdAt, rec.updatedAt)
}
