package domain

import (
	"time"

	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	// PriceDecimalPlaces и PriceMaxDigits соответствуют колонке NUMERIC(10,2).
	PriceDecimalPlaces = 2
	PriceMaxDigits     = 10
)

// MinPrice — минимально допустимая цена.
var MinPrice = decimal.New(1, -PriceDecimalPlaces)

// ProductPrice — цена продукта, действующая в интервале [StartDate, EndDate].
// EndDate == nil означает бессрочную цену.
type ProductPrice struct {
	ID        int64
	ProductID int64
	StartDate time.Time
	EndDate   *time.Time
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProductPrice(productID int64, startDate time.Time, endDate *time.Time, price decimal.Decimal) *ProductPrice {
	pp := &ProductPrice{
		ProductID: productID,
		StartDate: Date(startDate),
		Price:     price,
	}
	if endDate != nil {
		end := Date(*endDate)
		pp.EndDate = &end
	}

	return pp
}

// Validate проверяет цену и порядок дат.
func (p *ProductPrice) Validate() error {
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}

	if p.StartDate.IsZero() {
		return e.NewFieldError("start_date", e.ErrFieldRequired)
	}

	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return e.NewFieldError("end_date", e.ErrEndDateBeforeStartDate)
	}

	return nil
}

// ValidatePrice проверяет, что цена положительна и помещается в NUMERIC(10,2).
func ValidatePrice(price decimal.Decimal) error {
	if price.LessThan(MinPrice) {
		return e.NewFieldError("price", e.ErrPriceMustBePositive)
	}

	if !price.Equal(price.Truncate(PriceDecimalPlaces)) {
		return e.NewFieldError("price", e.ErrPricePrecision)
	}

	maxPrice := decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)
	if price.GreaterThanOrEqual(maxPrice) {
		return e.NewFieldError("price", e.ErrInvalidPrice)
	}

	return nil
}

// Overlaps сообщает, пересекается ли цена с интервалом [start, end] (границы включительно).
// Отсутствующая дата окончания с любой стороны считается бесконечностью.
func (p *ProductPrice) Overlaps(start time.Time, end *time.Time) bool {
	if end != nil && p.StartDate.After(*end) {
		return false
	}

	if p.EndDate != nil && p.EndDate.Before(start) {
		return false
	}

	return true
}

// InAggregationWindow — условие отбора для средних цен: start_date <= end AND end_date >= start.
// Бессрочные цены (EndDate == nil) не попадают в выборку: сравнение с NULL в SQL ложно.
func (p *ProductPrice) InAggregationWindow(start, end time.Time) bool {
	if p.EndDate == nil {
		return false
	}

	return !p.StartDate.After(end) && !p.EndDate.Before(start)
}

// HasChanges сообщает, отличается ли цена от prev по датам или сумме.
func (p *ProductPrice) HasChanges(prev *ProductPrice) bool {
	if prev == nil {
		return true
	}

	return !p.StartDate.Equal(prev.StartDate) ||
		!sameDate(p.EndDate, prev.EndDate) ||
		!p.Price.Equal(prev.Price)
}

// Clone возвращает копию, не разделяющую указатель на EndDate.
func (p *ProductPrice) Clone() *ProductPrice {
	c := *p
	if p.EndDate != nil {
		end := *p.EndDate
		c.EndDate = &end
	}

	return &c
}
