package converter

import "github.com/shopspring/decimal"

// AveragePriceRedisModel — закэшированный результат агрегации средней цены.
type AveragePriceRedisModel struct {
	Period  string                    `json:"period"`
	Average decimal.Decimal           `json:"average"`
	Buckets []PeriodAverageRedisModel `json:"buckets,omitempty"`
}

type PeriodAverageRedisModel struct {
	Period   int             `json:"period"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}
