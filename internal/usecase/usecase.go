package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
)

type CatalogUC interface {
	CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CategoriesLastModified(ctx context.Context) (*time.Time, error)

	CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ProductsLastModified(ctx context.Context) (*time.Time, error)
}

type PriceUC interface {
	CreateOrReplacePrice(ctx context.Context, productID int64, req *SavePriceReq) (*domain.ProductPrice, error)
	UpdatePrice(ctx context.Context, priceID int64, req *SavePriceReq) (*domain.ProductPrice, error)
	DeletePrice(ctx context.Context, priceID int64) error
	ListProductPrices(ctx context.Context, productID int64) ([]domain.ProductPrice, error)
	SetCategoryPrice(ctx context.Context, req *SetCategoryPriceReq) error
}

type AveragePriceUC interface {
	GetAveragePrice(ctx context.Context, req *AveragePriceReq) (*AveragePriceRes, error)
}

type HistoryUC interface {
	ListHistory(ctx context.Context, filter PriceHistoryFilter) ([]domain.PriceHistory, error)
}
