package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-marketplace/internal/platform/postgres"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their lines in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid"`
	CustomerID string    `gorm:"column:customer_id;type:uuid;index"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// orderProductRecord is a row of the orders_products join table. Product and
// order references are nullable so deleting either side keeps the line history.
type orderProductRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid"`
	ProductID *string         `gorm:"column:product_id;type:uuid"`
	OrderID   *string         `gorm:"column:order_id;type:uuid;index"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
	Quantity  int             `gorm:"column:quantity"`
	Position  int             `gorm:"column:position"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (orderProductRecord) TableName() string { return "orders_products" }

// Create inserts the order header followed by its lines in a single transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	header, lines := toRecords(order)
	err := platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return toProjection(header, lines), nil
}

// GetByID loads an order with its lines.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}
	var header orderRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&header, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.linesFor(ctx, []string{header.ID})
	if err != nil {
		return nil, err
	}
	return toProjection(header, lines[header.ID]), nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	customerID = strings.TrimSpace(customerID)
	if _, err := uuid.Parse(customerID); err != nil {
		return []*projection.Projection[*domain.Order]{}, nil
	}
	var headers []orderRecord
	if err := platformpostgres.Conn(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Order("id").
		Find(&headers).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]*projection.Projection[*domain.Order], 0, len(headers))
	for _, h := range headers {
		result = append(result, toProjection(h, lines[h.ID]))
	}
	return result, nil
}

func (r *Repository) linesFor(ctx context.Context, orderIDs []string) (map[string][]orderProductRecord, error) {
	grouped := make(map[string][]orderProductRecord, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var records []orderProductRecord
	if err := platformpostgres.Conn(ctx, r.db).
		Where("order_id = ANY(?::uuid[])", pq.Array(orderIDs)).
		Order("position").
		Find(&records).Error; err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.OrderID == nil {
			continue
		}
		grouped[*rec.OrderID] = append(grouped[*rec.OrderID], rec)
	}
	return grouped, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecords(order *domain.Order) (orderRecord, []orderProductRecord) {
	header := orderRecord{ID: order.ID, CustomerID: order.CustomerID}
	orderID := order.ID
	lines := make([]orderProductRecord, 0, len(order.Lines))
	for i, line := range order.Lines {
		productID := line.ProductID
		lines = append(lines, orderProductRecord{
			ID:        uuid.NewString(),
			ProductID: &productID,
			OrderID:   &orderID,
			Price:     line.Price.Round(2),
			Quantity:  line.Quantity,
			Position:  i,
		})
	}
	return header, lines
}

func toProjection(header orderRecord, lines []orderProductRecord) *projection.Projection[*domain.Order] {
	order := &domain.Order{
		ID:         header.ID,
		CustomerID: header.CustomerID,
		Lines:      make([]domain.Line, 0, len(lines)),
	}
	for _, rec := range lines {
		line := domain.Line{Quantity: rec.Quantity, Price: rec.Price}
		if rec.ProductID != nil {
			line.ProductID = *rec.ProductID
		}
		order.Lines = append(order.Lines, line)
	}
	return projection.New(order, header.CreatedAt, header.UpdatedAt)
}
