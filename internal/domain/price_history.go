package domain

import (
	"time"

	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// PriceAction — тип события в истории цен.
type PriceAction string

const (
	ActionCreated PriceAction = "created"
	ActionUpdated PriceAction = "updated"
	ActionDeleted PriceAction = "deleted"
)

func ParsePriceAction(s string) (PriceAction, error) {
	switch a := PriceAction(s); a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return a, nil
	default:
		return "", e.NewFieldError("action", e.ErrInvalidAction)
	}
}

// PriceHistory — неизменяемая запись аудита изменения цены.
// Имя и SKU продукта копируются на момент события, ссылки на продукт нет:
// записи переживают удаление и переименование продукта.
type PriceHistory struct {
	ID          int64
	ProductName string
	ProductSKU  string
	StartDate   time.Time
	EndDate     *time.Time
	Price       decimal.Decimal
	Action      PriceAction
	ChangeDate  time.Time
}

func NewPriceHistory(product *Product, price *ProductPrice, action PriceAction) *PriceHistory {
	h := &PriceHistory{
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		StartDate:   price.StartDate,
		Price:       price.Price,
		Action:      action,
	}
	if price.EndDate != nil {
		end := *price.EndDate
		h.EndDate = &end
	}

	return h
}
