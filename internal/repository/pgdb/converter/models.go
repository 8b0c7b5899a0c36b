package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	CategoryID  int64     `db:"category_id"`
	SKU         string    `db:"sku"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProductPriceModel представляет запись таблицы product_prices в PostgreSQL.
type ProductPriceModel struct {
	ID        int64           `db:"id"`
	ProductID int64           `db:"product_id"`
	StartDate time.Time       `db:"start_date"`
	EndDate   *time.Time      `db:"end_date"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// PriceHistoryModel представляет запись таблицы price_history в PostgreSQL.
type PriceHistoryModel struct {
	ID          int64           `db:"id"`
	ProductName string          `db:"product_name"`
	ProductSKU  string          `db:"product_sku"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     *time.Time      `db:"end_date"`
	Price       decimal.Decimal `db:"price"`
	Action      string          `db:"action"`
	ChangeDate  time.Time       `db:"change_date"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
