package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// REQUESTS

type categoryRequest struct {
	Name string `json:"name"`
}

func (c *categoryRequest) toUseCase() *usecase.CategoryReq {
	return &usecase.CategoryReq{Name: c.Name}
}

type productRequest struct {
	Name        string `json:"name"`
	Category    *int64 `json:"category"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

func (p *productRequest) toUseCase() (*usecase.ProductReq, error) {
	if p.Category == nil {
		return nil, e.NewFieldError("category", e.ErrFieldRequired)
	}

	return &usecase.ProductReq{
		Name:        p.Name,
		CategoryID:  *p.Category,
		SKU:         p.SKU,
		Description: p.Description,
	}, nil
}

// priceRequest принимает цену и строкой, и числом.
type priceRequest struct {
	StartDate string           `json:"start_date"`
	EndDate   *string          `json:"end_date"`
	Price     *decimal.Decimal `json:"price"`
}

func (p *priceRequest) toUseCase() (*usecase.SavePriceReq, error) {
	start, err := parseDateField("start_date", p.StartDate)
	if err != nil {
		return nil, err
	}

	end, err := parseOptionalDateField("end_date", p.EndDate)
	if err != nil {
		return nil, err
	}

	if p.Price == nil {
		return nil, e.NewFieldError("price", e.ErrFieldRequired)
	}

	return usecase.NewSavePriceReq(start, end, *p.Price), nil
}

type categoryPriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

// RESPONSES

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    int64     `json:"category"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.CategoryID,
		SKU:         p.SKU,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type priceResponse struct {
	ID        int64   `json:"id"`
	Product   int64   `json:"product"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Price     string  `json:"price"`
}

func newPriceResponse(p *domain.ProductPrice) priceResponse {
	return priceResponse{
		ID:        p.ID,
		Product:   p.ProductID,
		StartDate: p.StartDate.Format(domain.DateLayout),
		EndDate:   domain.FormatDate(p.EndDate),
		Price:     p.Price.StringFixed(domain.PriceDecimalPlaces),
	}
}

type historyResponse struct {
	ID          int64     `json:"id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Price       string    `json:"price"`
	Action      string    `json:"action"`
	ChangeDate  time.Time `json:"change_date"`
}

func newHistoryResponse(h *domain.PriceHistory) historyResponse {
	return historyResponse{
		ID:          h.ID,
		ProductName: h.ProductName,
		ProductSKU:  h.ProductSKU,
		StartDate:   h.StartDate.Format(domain.DateLayout),
		EndDate:     domain.FormatDate(h.EndDate),
		Price:       h.Price.StringFixed(domain.PriceDecimalPlaces),
		Action:      string(h.Action),
		ChangeDate:  h.ChangeDate,
	}
}

// Средние цены отдаются числами с двумя знаками после запятой: 1250.00.

type averageResponse struct {
	AveragePrice json.Number `json:"average_price"`
}

type weekAverageResponse struct {
	Week     int         `json:"week"`
	AvgPrice json.Number `json:"avg_price"`
}

type monthAverageResponse struct {
	Month    int         `json:"month"`
	AvgPrice json.Number `json:"avg_price"`
}

func newAverageResponse(avg *domain.AveragePrice) any {
	switch avg.Period {
	case domain.PeriodWeek:
		res := make([]weekAverageResponse, 0, len(avg.Buckets))
		for _, b := range avg.Buckets {
			res = append(res, weekAverageResponse{Week: b.Period, AvgPrice: money(b.AvgPrice)})
		}
		return res
	case domain.PeriodMonth:
		res := make([]monthAverageResponse, 0, len(avg.Buckets))
		for _, b := range avg.Buckets {
			res = append(res, monthAverageResponse{Month: b.Period, AvgPrice: money(b.AvgPrice)})
		}
		return res
	default:
		return averageResponse{AveragePrice: money(avg.Average)}
	}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.PriceDecimalPlaces))
}

func mapSlice[T, R any](items []T, f func(*T) R) []R {
	res := make([]R, 0, len(items))
	for i := range items {
		res = append(res, f(&items[i]))
	}

	return res
}
