package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	catalogdomain "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	customerports "github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
)

const publishTimeout = 5 * time.Second

// errReplay aborts the unit of work when an idempotency key already produced an order.
var errReplay = errors.New("idempotent replay")

// Service places and reads orders.
type Service struct {
	customers   ports.CustomerLookup
	catalog     ports.ProductCatalog
	orders      ports.Repository
	tx          ports.Transactor
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithTransactor makes placement atomic across the catalog and order stores.
func WithTransactor(tx ports.Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithIdempotencyStore enables replay of requests carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithEventPublisher announces placed orders after commit.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithLogger reports event delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the order service with its collaborators.
func NewService(customers ports.CustomerLookup, catalog ports.ProductCatalog, orders ports.Repository, opts ...Option) *Service {
	s := &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		tx:        passthroughTx{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type requestedLine struct {
	productID string
	quantity  int
}

// PlaceOrder validates stock, decrements it and persists the order as one unit of work.
// Without an idempotency key two identical calls place two orders.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	customerID := strings.TrimSpace(input.CustomerID)
	if customerID == "" {
		return nil, mapError(domain.ErrEmptyCustomer)
	}
	requested, err := collapseLines(input.Lines)
	if err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if err := ValidateIdempotencyKey(key); err != nil {
		return nil, mapError(err)
	}
	if s.idempotency == nil {
		key = ""
	}
	var requestHash string
	if key != "" {
		if requestHash, err = fingerprintPlaceOrder(customerID, requested); err != nil {
			return nil, err
		}
	}

	var (
		placed   *ordertypes.OrderProjection
		replayID string
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if key != "" {
			existing, err := s.idempotency.Get(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.RequestHash != requestHash {
					return ports.ErrIdempotencyConflict
				}
				replayID = existing.OrderID
				return errReplay
			}
		}

		order, err := s.place(ctx, customerID, requested)
		if err != nil {
			return err
		}
		placed = order

		if key != "" {
			stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: requestHash, OrderID: order.Entity.ID})
			if err != nil {
				if errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil && stored.RequestHash == requestHash {
					replayID = stored.OrderID
					return errReplay
				}
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errReplay) {
		return s.orders.GetByID(ctx, replayID)
	}
	if err != nil {
		return nil, mapError(err)
	}

	s.publishPlaced(ctx, placed)
	return placed, nil
}

func (s *Service) place(ctx context.Context, customerID string, requested []requestedLine) (*ordertypes.OrderProjection, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customerports.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if len(requested) == 0 {
		return nil, ErrProductsNotFound
	}

	ids := make([]string, 0, len(requested))
	for _, r := range requested {
		ids = append(ids, r.productID)
	}
	products, err := s.catalog.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	if len(products) != len(ids) {
		return nil, ErrProductsNotFound
	}
	byID := make(map[string]*catalogdomain.Product, len(products))
	for _, p := range products {
		if p != nil {
			byID[p.ID] = p
		}
	}

	lines := make([]domain.Line, 0, len(requested))
	touched := make([]*catalogdomain.Product, 0, len(requested))
	for _, r := range requested {
		product, ok := byID[r.productID]
		if !ok {
			return nil, ErrProductsNotFound
		}
		available := product.Quantity
		if err := product.Withdraw(r.quantity); err != nil {
			if errors.Is(err, catalogdomain.ErrInsufficientStock) {
				return nil, &StockError{ProductID: product.ID, Requested: r.quantity, Available: available}
			}
			return nil, err
		}
		lines = append(lines, domain.Line{ProductID: product.ID, Quantity: r.quantity, Price: product.Price})
		touched = append(touched, product)
	}

	if err := s.catalog.UpdateQuantity(ctx, touched); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	order, err := domain.NewOrder("", customer.ID, lines)
	if err != nil {
		return nil, err
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return created, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, id string) (*ordertypes.OrderProjection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	return s.orders.GetByID(ctx, id)
}

// ListCustomerOrders returns the orders of an existing customer, newest first.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderProjection, error) {
	if _, err := s.customers.FindByID(ctx, strings.TrimSpace(customerID)); err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, strings.TrimSpace(customerID))
}

func (s *Service) publishPlaced(ctx context.Context, placed *ordertypes.OrderProjection) {
	if s.events == nil || placed == nil || placed.Entity == nil {
		return
	}
	placedAt := placed.Metadata.CreatedAt
	if placedAt.IsZero() {
		placedAt = s.now()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.PublishOrderPlaced(ctx, domain.NewOrderPlaced(placed.Entity, placedAt)); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order placed event",
			slog.String("order.id", placed.Entity.ID),
			slog.String("error", err.Error()))
	}
}

// collapseLines validates each requested line and merges duplicate product ids.
// The last quantity seen for an id wins; ids keep their first-appearance order.
func collapseLines(lines []ordertypes.OrderLineInput) ([]requestedLine, error) {
	index := make(map[string]int, len(lines))
	result := make([]requestedLine, 0, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" {
			return nil, domain.ErrEmptyProduct
		}
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[id]; ok {
			result[i].quantity = line.Quantity
			continue
		}
		index[id] = len(result)
		result = append(result, requestedLine{productID: id, quantity: line.Quantity})
	}
	return result, nil
}

// ValidateIdempotencyKey rejects client keys longer than the store accepts.
func ValidateIdempotencyKey(key string) error {
	if utf8.RuneCountInString(strings.TrimSpace(key)) > ports.MaxIdempotencyKeyLength {
		return ports.ErrIdempotencyKeyTooLong
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.Service = (*Service)(nil)
