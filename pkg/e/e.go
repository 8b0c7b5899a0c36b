package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки
	ErrTransactionNotFound  = fmt.Errorf("transaction not found")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrInvalidJSON            = fmt.Errorf("invalid json body")
	ErrFieldRequired          = fmt.Errorf("this field is required")
	ErrFieldTooLong           = fmt.Errorf("ensure this field has no more than 100 characters")
	ErrInvalidID              = fmt.Errorf("a valid integer id is required")
	ErrInvalidDate            = fmt.Errorf("date has wrong format, use YYYY-MM-DD")
	ErrInvalidPrice           = fmt.Errorf("ensure that there are no more than 10 digits in total")
	ErrPricePrecision         = fmt.Errorf("ensure that there are no more than 2 decimal places")
	ErrPriceMustBePositive    = fmt.Errorf("ensure this value is greater than or equal to 0.01")
	ErrEndDateBeforeStartDate = fmt.Errorf("end date must be after the start date")
	ErrInvalidDateRange       = fmt.Errorf("end date must be after start date")
	ErrInvalidPeriod          = fmt.Errorf("not a valid choice")
	ErrInvalidAction          = fmt.Errorf("not a valid action")
	ErrDuplicatePriceWindow   = fmt.Errorf("the combination of product, start date and end date must be unique")
	ErrCategoryNameTaken      = fmt.Errorf("category with this name already exists")
	ErrProductSKUTaken        = fmt.Errorf("product with this sku already exists")
	ErrProductNameTaken       = fmt.Errorf("the fields name, category must make a unique set")

	// 404 Not Found
	ErrCategoryNotFound = fmt.Errorf("category not found")
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrPriceNotFound    = fmt.Errorf("product price not found")

	// 429 Too Many Requests
	ErrTooManyRequests = fmt.Errorf("request was throttled")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// FieldError привязывает ошибку валидации к конкретному полю запроса.
type FieldError struct {
	Field string
	Err   error
}

func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

func (f *FieldError) Error() string {
	return f.Field + ": " + f.Err.Error()
}

func (f *FieldError) Unwrap() error {
	return f.Err
}

// AsFieldError достаёт FieldError из цепочки обёрток.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}

	return nil, false
}
