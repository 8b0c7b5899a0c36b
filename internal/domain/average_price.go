package domain

import (
	"sort"
	"time"

	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// AveragePricePeriod задаёт разбиение выборки при расчёте средней цены.
type AveragePricePeriod string

const (
	PeriodWhole AveragePricePeriod = "whole"
	PeriodWeek  AveragePricePeriod = "week"
	PeriodMonth AveragePricePeriod = "month"
)

// ParseAveragePricePeriod разбирает период; пустая строка означает весь диапазон.
func ParseAveragePricePeriod(s string) (AveragePricePeriod, error) {
	switch p := AveragePricePeriod(s); p {
	case "":
		return PeriodWhole, nil
	case PeriodWhole, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", e.NewFieldError("period", e.ErrInvalidPeriod)
	}
}

// ValidateDateRange проверяет, что начало диапазона не позже конца.
func ValidateDateRange(start, end time.Time) error {
	if start.After(end) {
		return e.NewFieldError("end_date", e.ErrInvalidDateRange)
	}

	return nil
}

// PeriodAverage — средняя цена за одну неделю (ISO) или один месяц.
type PeriodAverage struct {
	Period   int
	AvgPrice decimal.Decimal
}

// AveragePrice — результат агрегации. Для PeriodWhole заполнено Average, иначе Buckets.
type AveragePrice struct {
	Period  AveragePricePeriod
	Average decimal.Decimal
	Buckets []PeriodAverage
}

// CalculateAveragePrice считает простое среднее цен, попавших в [start, end].
// Возвращает false, если ни одна цена не попала в выборку.
// Группировка идёт по start_date цены: номер недели ISO или номер месяца, по возрастанию.
func CalculateAveragePrice(prices []ProductPrice, start, end time.Time, period AveragePricePeriod) (*AveragePrice, bool) {
	selected := make([]ProductPrice, 0, len(prices))
	for _, p := range prices {
		if p.InAggregationWindow(start, end) {
			selected = append(selected, p)
		}
	}

	if len(selected) == 0 {
		return nil, false
	}

	res := &AveragePrice{Period: period}
	if period == PeriodWhole {
		res.Average = mean(selected)
		return res, true
	}

	groups := make(map[int][]ProductPrice)
	for _, p := range selected {
		key := bucketOf(p.StartDate, period)
		groups[key] = append(groups[key], p)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	res.Buckets = make([]PeriodAverage, 0, len(keys))
	for _, k := range keys {
		res.Buckets = append(res.Buckets, PeriodAverage{Period: k, AvgPrice: mean(groups[k])})
	}

	return res, true
}

func bucketOf(t time.Time, period AveragePricePeriod) int {
	if period == PeriodWeek {
		_, week := t.ISOWeek()
		return week
	}

	return int(t.Month())
}

// mean — среднее арифметическое с банковским округлением до двух знаков.
func mean(prices []ProductPrice) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p.Price)
	}

	return sum.Div(decimal.NewFromInt(int64(len(prices)))).RoundBank(PriceDecimalPlaces)
}
