package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// PriceUseCase ведёт непересекающуюся историю цен каждого продукта.
//
// Каждое сохранение цены сначала удаляет все прочие цены продукта,
// пересекающиеся с новым интервалом (перезапись вместо отказа),
// а затем пишет запись. Обе стороны фиксируются в журнале через HistoryRecorder.
// Параллельные записи в один продукт сериализуются только уровнем изоляции
// транзакции; гонка двух одинаковых окон завершается ErrDuplicatePriceWindow.
type PriceUseCase struct {
	txManager    TxManager
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	priceRepo    ProductPriceRepository
	recorder     *HistoryRecorder
	cache        AveragePriceCache
	logger       logger.Logger
}

func NewPriceUC(
	txManager TxManager,
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	priceRepo ProductPriceRepository,
	recorder *HistoryRecorder,
	cache AveragePriceCache,
	logger logger.Logger,
) *PriceUseCase {
	return &PriceUseCase{
		txManager:    txManager,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		priceRepo:    priceRepo,
		recorder:     recorder,
		cache:        cache,
		logger:       logger,
	}
}

// CreateOrReplacePrice создаёт цену продукта, удаляя пересекающиеся с ней цены.
func (p *PriceUseCase) CreateOrReplacePrice(ctx context.Context, productID int64, req *SavePriceReq) (*domain.ProductPrice, error) {
	const op = "PriceUseCase.CreateOrReplacePrice"

	price := domain.NewProductPrice(productID, req.StartDate, req.EndDate, req.Price)
	if err := price.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		saved   *domain.ProductPrice
		product *domain.Product
	)
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		product, err = p.productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		saved, _, err = p.save(ctx, product, price, nil)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, product.CategoryID)
	return saved, nil
}

// UpdatePrice изменяет существующую цену. Пересечения удаляются при каждом сохранении,
// даже если значения не изменились; запись "updated" пишется только при реальных изменениях.
func (p *PriceUseCase) UpdatePrice(ctx context.Context, priceID int64, req *SavePriceReq) (*domain.ProductPrice, error) {
	const op = "PriceUseCase.UpdatePrice"

	var (
		saved   *domain.ProductPrice
		product *domain.Product
	)
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		prev, err := p.priceRepo.GetByID(ctx, priceID)
		if err != nil {
			return err
		}

		price := domain.NewProductPrice(prev.ProductID, req.StartDate, req.EndDate, req.Price)
		price.ID = prev.ID
		price.CreatedAt = prev.CreatedAt
		if err := price.Validate(); err != nil {
			return err
		}

		product, err = p.productRepo.GetByID(ctx, prev.ProductID)
		if err != nil {
			return err
		}

		saved, _, err = p.save(ctx, product, price, prev)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, product.CategoryID)
	return saved, nil
}

// DeletePrice удаляет цену, фиксируя её последнее состояние в журнале.
func (p *PriceUseCase) DeletePrice(ctx context.Context, priceID int64) error {
	const op = "PriceUseCase.DeletePrice"

	var product *domain.Product
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		price, err := p.priceRepo.GetByID(ctx, priceID)
		if err != nil {
			return err
		}

		product, err = p.productRepo.GetByID(ctx, price.ProductID)
		if err != nil {
			return err
		}

		if err := p.recorder.RecordDeleted(ctx, product, price); err != nil {
			return err
		}

		return p.priceRepo.Delete(ctx, priceID)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, product.CategoryID)
	return nil
}

// ListProductPrices возвращает цены продукта по возрастанию даты начала.
func (p *PriceUseCase) ListProductPrices(ctx context.Context, productID int64) ([]domain.ProductPrice, error) {
	const op = "PriceUseCase.ListProductPrices"

	if _, err := p.productRepo.GetByID(ctx, productID); err != nil {
		return nil, e.Wrap(op, err)
	}

	prices, err := p.priceRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return prices, nil
}

// SetCategoryPrice выставляет одну цену всем текущим ценам категории.
// Каждая цена проходит обычный путь сохранения, поэтому в журнал попадает "updated" на каждую изменённую.
func (p *PriceUseCase) SetCategoryPrice(ctx context.Context, req *SetCategoryPriceReq) error {
	const op = "PriceUseCase.SetCategoryPrice"

	if err := domain.ValidatePrice(req.Price); err != nil {
		return e.Wrap(op, err)
	}

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := p.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			return err
		}

		prices, err := p.priceRepo.ListByCategory(ctx, req.CategoryID)
		if err != nil {
			return err
		}

		products := make(map[int64]*domain.Product)
		purged := make(map[int64]struct{})
		for i := range prices {
			prev := &prices[i]
			if _, gone := purged[prev.ID]; gone {
				continue
			}

			product, ok := products[prev.ProductID]
			if !ok {
				product, err = p.productRepo.GetByID(ctx, prev.ProductID)
				if err != nil {
					return err
				}
				products[prev.ProductID] = product
			}

			price := prev.Clone()
			price.Price = req.Price

			_, removed, err := p.save(ctx, product, price, prev)
			if err != nil {
				return err
			}
			for _, r := range removed {
				purged[r.ID] = struct{}{}
			}
		}

		return nil
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, req.CategoryID)
	return nil
}

// save — единый путь записи цены: удаление пересечений, запись, журнал.
// prev == nil означает создание новой цены.
func (p *PriceUseCase) save(ctx context.Context, product *domain.Product, price, prev *domain.ProductPrice) (*domain.ProductPrice, []domain.ProductPrice, error) {
	removed, err := p.priceRepo.DeleteOverlapping(ctx, price.ProductID, price.StartDate, price.EndDate, price.ID)
	if err != nil {
		return nil, nil, err
	}

	for i := range removed {
		if err := p.recorder.RecordDeleted(ctx, product, &removed[i]); err != nil {
			return nil, nil, err
		}
	}

	var saved *domain.ProductPrice
	if prev == nil {
		saved, err = p.priceRepo.Create(ctx, price)
	} else {
		saved, err = p.priceRepo.Update(ctx, price)
	}
	if err != nil {
		if errors.Is(err, e.ErrDuplicatePriceWindow) {
			return nil, nil, e.NewFieldError("product", err)
		}
		return nil, nil, err
	}

	if prev == nil {
		err = p.recorder.RecordCreated(ctx, product, saved)
	} else {
		_, err = p.recorder.RecordUpdated(ctx, product, prev, saved)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(removed) > 0 {
		p.logger.Infof("price %d of product %s replaced %d overlapping price(s)", saved.ID, product.SKU, len(removed))
	}

	return saved, removed, nil
}

func (p *PriceUseCase) invalidate(ctx context.Context, categoryIDs ...int64) {
	if err := p.cache.InvalidateCategory(ctx, categoryIDs...); err != nil {
		p.logger.Warnf("Failed to invalidate average price cache: %v", err)
	}
}
