package usecase

import (
	"context"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// AveragePriceUseCase считает среднюю цену категории за диапазон дат.
type AveragePriceUseCase struct {
	categoryRepo CategoryRepository
	priceRepo    ProductPriceRepository
	cache        AveragePriceCache
	logger       logger.Logger
}

func NewAveragePriceUC(
	categoryRepo CategoryRepository,
	priceRepo ProductPriceRepository,
	cache AveragePriceCache,
	logger logger.Logger,
) *AveragePriceUseCase {
	return &AveragePriceUseCase{
		categoryRepo: categoryRepo,
		priceRepo:    priceRepo,
		cache:        cache,
		logger:       logger,
	}
}

// GetAveragePrice возвращает среднюю цену за весь диапазон, по неделям или по месяцам.
// Бессрочные цены в расчёт не входят.
func (a *AveragePriceUseCase) GetAveragePrice(ctx context.Context, req *AveragePriceReq) (*AveragePriceRes, error) {
	const op = "AveragePriceUseCase.GetAveragePrice"

	if _, err := a.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	start, end := domain.Date(req.StartDate), domain.Date(req.EndDate)
	if err := domain.ValidateDateRange(start, end); err != nil {
		return nil, e.Wrap(op, err)
	}

	period, err := domain.ParseAveragePricePeriod(req.Period)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	key := AveragePriceKey{CategoryID: req.CategoryID, StartDate: start, EndDate: end, Period: period}
	lookup, err := a.cache.GetAveragePrice(ctx, key)
	if err != nil {
		a.logger.Warnf("Failed to read average price from cache: %v", e.Wrap(op, err))
	} else if lookup.Hit {
		return &AveragePriceRes{Average: lookup.Average}, nil
	}

	prices, err := a.priceRepo.ListForAverage(ctx, req.CategoryID, start, end)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	avg, ok := domain.CalculateAveragePrice(prices, start, end, period)
	if !ok {
		return &AveragePriceRes{NoData: true}, nil
	}

	// без прочитанной версии кэшировать нельзя: можно записать устаревшее среднее под новую версию
	if lookup != nil {
		if err := a.cache.SetAveragePrice(ctx, key, lookup.Version, avg); err != nil {
			a.logger.Warnf("Failed to cache average price: %v", e.Wrap(op, err))
		}
	}

	return &AveragePriceRes{Average: avg}, nil
}
