package domain

import (
	"strings"
	"time"
)

// Product описывает продукт. SKU уникален глобально, имя — в пределах категории.
type Product struct {
	ID          int64
	Name        string
	CategoryID  int64
	SKU         string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(name string, categoryID int64, sku string, description string) *Product {
	return &Product{
		Name:        strings.TrimSpace(name),
		CategoryID:  categoryID,
		SKU:         strings.TrimSpace(sku),
		Description: description,
	}
}

func (p *Product) Validate() error {
	if err := validateName("name", p.Name); err != nil {
		return err
	}

	return validateName("sku", p.SKU)
}
