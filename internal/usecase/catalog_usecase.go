package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// CatalogUseCase реализует управление категориями и продуктами.
// Удаление продукта или категории каскадно удаляет цены, и каждая удалённая цена попадает в журнал.
type CatalogUseCase struct {
	txManager    TxManager
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	priceRepo    ProductPriceRepository
	recorder     *HistoryRecorder
	cache        AveragePriceCache
	logger       logger.Logger
}

func NewCatalogUC(
	txManager TxManager,
	categoryRepo CategoryRepository,
	productRepo ProductRepository,
	priceRepo ProductPriceRepository,
	recorder *HistoryRecorder,
	cache AveragePriceCache,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		txManager:    txManager,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		priceRepo:    priceRepo,
		recorder:     recorder,
		cache:        cache,
		logger:       logger,
	}
}

func (c *CatalogUseCase) CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.CreateCategory"

	category := domain.NewCategory(req.Name)
	if err := category.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

func (c *CatalogUseCase) UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.UpdateCategory"

	category := domain.NewCategory(req.Name)
	category.ID = id
	if err := category.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := c.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

func (c *CatalogUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap("CatalogUseCase.GetCategory", err)
	}

	return category, nil
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap("CatalogUseCase.ListCategories", err)
	}

	return categories, nil
}

// DeleteCategory удаляет категорию вместе с продуктами и их ценами.
func (c *CatalogUseCase) DeleteCategory(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteCategory"

	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := c.categoryRepo.GetByID(ctx, id); err != nil {
			return err
		}

		products, err := c.productRepo.List(ctx, ProductFilter{CategoryID: &id})
		if err != nil {
			return err
		}

		for i := range products {
			if err := c.deleteProduct(ctx, &products[i]); err != nil {
				return err
			}
		}

		return c.categoryRepo.Delete(ctx, id)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.invalidate(ctx, id)
	return nil
}

func (c *CatalogUseCase) CategoriesLastModified(ctx context.Context) (*time.Time, error) {
	return c.categoryRepo.LastModified(ctx)
}

func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	product := domain.NewProduct(req.Name, req.CategoryID, req.SKU, req.Description)
	if err := product.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct обновляет продукт. Журнал цен не меняется: имя и SKU в нём зафиксированы на момент событий.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	product := domain.NewProduct(req.Name, req.CategoryID, req.SKU, req.Description)
	product.ID = id
	if err := product.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	var prevCategoryID int64
	var updated *domain.Product
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		prev, err := c.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		prevCategoryID = prev.CategoryID

		if err := c.ensureCategory(ctx, req.CategoryID); err != nil {
			return err
		}

		updated, err = c.productRepo.Update(ctx, product)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if prevCategoryID != updated.CategoryID {
		c.invalidate(ctx, prevCategoryID, updated.CategoryID)
	}

	return updated, nil
}

func (c *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap("CatalogUseCase.GetProduct", err)
	}

	return product, nil
}

func (c *CatalogUseCase) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	products, err := c.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap("CatalogUseCase.ListProducts", err)
	}

	return products, nil
}

// DeleteProduct удаляет продукт и все его цены.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteProduct"

	var categoryID int64
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := c.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		categoryID = product.CategoryID

		return c.deleteProduct(ctx, product)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.invalidate(ctx, categoryID)
	return nil
}

func (c *CatalogUseCase) ProductsLastModified(ctx context.Context) (*time.Time, error) {
	return c.productRepo.LastModified(ctx)
}

func (c *CatalogUseCase) deleteProduct(ctx context.Context, product *domain.Product) error {
	removed, err := c.priceRepo.DeleteByProduct(ctx, product.ID)
	if err != nil {
		return err
	}

	for i := range removed {
		if err := c.recorder.RecordDeleted(ctx, product, &removed[i]); err != nil {
			return err
		}
	}

	return c.productRepo.Delete(ctx, product.ID)
}

func (c *CatalogUseCase) ensureCategory(ctx context.Context, id int64) error {
	if _, err := c.categoryRepo.GetByID(ctx, id); err != nil {
		return e.NewFieldError("category", err)
	}

	return nil
}

func (c *CatalogUseCase) invalidate(ctx context.Context, categoryIDs ...int64) {
	if err := c.cache.InvalidateCategory(ctx, categoryIDs...); err != nil {
		c.logger.Warnf("Failed to invalidate average price cache: %v", err)
	}
}
