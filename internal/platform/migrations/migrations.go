package migrations

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Repositories never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&customerRecord{},
		&productRecord{},
		&orderRecord{},
		&orderProductRecord{},
		&orderIdempotencyRecord{},
	); err != nil {
		return err
	}
	for _, fk := range foreignKeys {
		if err := fk.apply(db); err != nil {
			return err
		}
	}
	return nil
}

// foreignKey is a named constraint AutoMigrate cannot express because the
// referencing records carry no association fields.
type foreignKey struct {
	name       string
	table      any
	tableName  string
	column     string
	references string
	onDelete   string
}

// Line items outlive the product or order they point to. A customer with orders cannot be removed.
var foreignKeys = []foreignKey{
	{name: "RefProduct", table: &orderProductRecord{}, tableName: "orders_products", column: "product_id", references: "products(id)", onDelete: "SET NULL"},
	{name: "RefOrder", table: &orderProductRecord{}, tableName: "orders_products", column: "order_id", references: "orders(id)", onDelete: "SET NULL"},
	{name: "RefCustomer", table: &orderRecord{}, tableName: "orders", column: "customer_id", references: "customers(id)", onDelete: "RESTRICT"},
}

func (fk foreignKey) apply(db *gorm.DB) error {
	if db.Migrator().HasConstraint(fk.table, fk.name) {
		return nil
	}
	stmt := fmt.Sprintf(
		`ALTER TABLE %s ADD CONSTRAINT %q FOREIGN KEY (%s) REFERENCES %s ON DELETE %s ON UPDATE CASCADE`,
		fk.tableName, fk.name, fk.column, fk.references, fk.onDelete,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("add constraint %s: %w", fk.name, err)
	}
	return nil
}

// Customer schema mirrors the customers Postgres adapter.
type customerRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (customerRecord) TableName() string { return "customers" }

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()"`
	Name      string          `gorm:"column:name;uniqueIndex"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_products_quantity,quantity >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:now()"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()"`
	CustomerID string    `gorm:"column:customer_id;type:uuid;index"`
	CreatedAt  time.Time `gorm:"column:created_at;index;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (orderRecord) TableName() string { return "orders" }

// Order line schema. product_id and order_id are nullable so SET NULL can apply.
type orderProductRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()"`
	ProductID *string         `gorm:"column:product_id;type:uuid"`
	OrderID   *string         `gorm:"column:order_id;type:uuid;index"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:now()"`
}

func (orderProductRecord) TableName() string { return "orders_products" }

// Idempotency schema mirrors the orders idempotency store.
type orderIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }
