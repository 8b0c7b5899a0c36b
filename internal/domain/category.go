package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DRSN-tech/price-backend/pkg/e"
)

// MaxNameLength — ограничение длины имён категорий, продуктов и SKU.
const MaxNameLength = 100

// Category описывает категорию продукта
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCategory(name string) *Category {
	return &Category{
		Name: strings.TrimSpace(name),
	}
}

func (c *Category) Validate() error {
	return validateName("name", c.Name)
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return e.NewFieldError(field, e.ErrFieldRequired)
	}

	if utf8.RuneCountInString(value) > MaxNameLength {
		return e.NewFieldError(field, e.ErrFieldTooLong)
	}

	return nil
}
