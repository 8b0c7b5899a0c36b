package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) error
	LastModified(ctx context.Context) (*time.Time, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Delete(ctx context.Context, id int64) error
	LastModified(ctx context.Context) (*time.Time, error)
}

type ProductPriceRepository interface {
	Create(ctx context.Context, price *domain.ProductPrice) (*domain.ProductPrice, error)
	Update(ctx context.Context, price *domain.ProductPrice) (*domain.ProductPrice, error)
	// GetByID блокирует строку до конца транзакции.
	GetByID(ctx context.Context, id int64) (*domain.ProductPrice, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.ProductPrice, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.ProductPrice, error)
	// ListForAverage отбирает цены категории по условию start_date <= end AND end_date >= start.
	ListForAverage(ctx context.Context, categoryID int64, start, end time.Time) ([]domain.ProductPrice, error)
	// DeleteOverlapping удаляет цены продукта, пересекающиеся с [start, end], кроме excludeID,
	// и возвращает их в состоянии до удаления.
	DeleteOverlapping(ctx context.Context, productID int64, start time.Time, end *time.Time, excludeID int64) ([]domain.ProductPrice, error)
	Delete(ctx context.Context, id int64) error
	DeleteByProduct(ctx context.Context, productID int64) ([]domain.ProductPrice, error)
}

type PriceHistoryRepository interface {
	Create(ctx context.Context, entry *domain.PriceHistory) (*domain.PriceHistory, error)
	List(ctx context.Context, filter PriceHistoryFilter) ([]domain.PriceHistory, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// ReleaseStuck возвращает в pending события, зависшие в processing дольше olderThan.
	ReleaseStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

// AveragePriceCache — кэш результатов агрегации. Ошибки кэша не должны ломать запрос.
type AveragePriceCache interface {
	GetAveragePrice(ctx context.Context, key AveragePriceKey) (*AveragePriceLookup, error)
	// SetAveragePrice сохраняет результат под версией, прочитанной в GetAveragePrice.
	// Если с тех пор категорию инвалидировали, запись уже никто не прочитает.
	SetAveragePrice(ctx context.Context, key AveragePriceKey, version int64, avg *domain.AveragePrice) error
	InvalidateCategory(ctx context.Context, categoryIDs ...int64) error
}
