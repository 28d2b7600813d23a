package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

type orderRecord struct {
	order     *domain.Order
	createdAt time.Time
	updatedAt time.Time
	seq       int64
}

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]orderRecord
	seq    int64
	now    func() time.Time
	// failCreate is returned by Create when set; used to exercise rollbacks.
	failCreate error
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]orderRecord{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// FailCreateWith makes subsequent Create calls fail with err. Pass nil to reset.
func (r *Repository) FailCreateWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate = err
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	if _, exists := r.orders[clone.ID]; exists {
		return nil, errors.New("order already exists")
	}
	now := r.now()
	r.seq++
	rec := orderRecord{order: clone, createdAt: now, updatedAt: now, seq: r.seq}
	r.orders[clone.ID] = rec
	return rec.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.orders[strings.TrimSpace(id)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return rec.projection(), nil
}

func (r *Repository) ListByCustomer(_ context.Context, customerID string) ([]*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]orderRecord, 0)
	for _, rec := range r.orders {
		if rec.order.CustomerID == customerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })
	list := make([]*projection.Projection[*domain.Order], 0, len(records))
	for _, rec := range records {
		list = append(list, rec.projection())
	}
	return list, nil
}

// Count reports the number of stored orders.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// Checkpoint snapshots the orders for memtx rollbacks.
func (r *Repository) Checkpoint() func() {
	r.mu.RLock()
	saved := make(map[string]orderRecord, len(r.orders))
	for id, rec := range r.orders {
		saved[id] = rec
	}
	seq := r.seq
	r.mu.RUnlock()
	return func() {
		r.mu.Lock()
		r.orders = saved
		r.seq = seq
		r.mu.Unlock()
	}
}

// Reset drops every order.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = map[string]orderRecord{}
	r.seq = 0
}

func (rec orderRecord) projection() *projection.Projection[*domain.Order] {
	return projection.New(rec.order.Clone(), rec.createdAt, rec.updatedAt)
}
