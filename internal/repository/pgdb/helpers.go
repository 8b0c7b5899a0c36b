package pgdb

import (
	"errors"

	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Имена ограничений из db/migrations.
const (
	categoriesNameKey        = "categories_name_key"
	productsSKUKey           = "products_sku_key"
	productsNameCategoryKey  = "products_name_category_id_key"
	productsCategoryFKey     = "products_category_id_fkey"
	productPricesWindowKey   = "product_prices_product_id_start_date_end_date_key"
	productPricesProductFKey = "product_prices_product_id_fkey"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}

func postgresDuplicate(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == uniqueViolationCode
}

// mapConstraintErr переводит нарушения ограничений в доменные ошибки.
// Неизвестные ошибки возвращаются как есть.
func mapConstraintErr(err error) error {
	pgErr, ok := pgError(err)
	if !ok {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		switch pgErr.ConstraintName {
		case categoriesNameKey:
			return e.NewFieldError("name", e.ErrCategoryNameTaken)
		case productsSKUKey:
			return e.NewFieldError("sku", e.ErrProductSKUTaken)
		case productsNameCategoryKey:
			return e.NewFieldError("name", e.ErrProductNameTaken)
		case productPricesWindowKey:
			return e.ErrDuplicatePriceWindow
		}
	case foreignKeyViolationCode:
		switch pgErr.ConstraintName {
		case productsCategoryFKey:
			return e.NewFieldError("category", e.ErrCategoryNotFound)
		case productPricesProductFKey:
			return e.NewFieldError("product", e.ErrProductNotFound)
		}
	}

	return err
}

// notFound подменяет pgx.ErrNoRows доменной ошибкой отсутствия записи.
func notFound(err, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}

	return err
}
