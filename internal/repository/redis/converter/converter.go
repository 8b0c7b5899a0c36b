package converter

import "github.com/DRSN-tech/price-backend/internal/domain"

type AveragePriceConverter struct{}

func (AveragePriceConverter) ToRedisModel(entity *domain.AveragePrice) *AveragePriceRedisModel {
	model := &AveragePriceRedisModel{
		Period:  string(entity.Period),
		Average: entity.Average,
	}

	for _, b := range entity.Buckets {
		model.Buckets = append(model.Buckets, PeriodAverageRedisModel{Period: b.Period, AvgPrice: b.AvgPrice})
	}

	return model
}

func (AveragePriceConverter) ToDomain(model *AveragePriceRedisModel) *domain.AveragePrice {
	entity := &domain.AveragePrice{
		Period:  domain.AveragePricePeriod(model.Period),
		Average: model.Average,
	}

	for _, b := range model.Buckets {
		entity.Buckets = append(entity.Buckets, domain.PeriodAverage{Period: b.Period, AvgPrice: b.AvgPrice})
	}

	return entity
}
