package pgdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapConstraintErr(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		constraint string
		field      string
		want       error
	}{
		{"category name", uniqueViolationCode, categoriesNameKey, "name", e.ErrCategoryNameTaken},
		{"product sku", uniqueViolationCode, productsSKUKey, "sku", e.ErrProductSKUTaken},
		{"product name in category", uniqueViolationCode, productsNameCategoryKey, "name", e.ErrProductNameTaken},
		{"unknown category", foreignKeyViolationCode, productsCategoryFKey, "category", e.ErrCategoryNotFound},
		{"unknown product", foreignKeyViolationCode, productPricesProductFKey, "product", e.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapConstraintErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code, ConstraintName: tt.constraint}))

			fe, ok := e.AsFieldError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, fe.Field)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapConstraintErrPriceWindow(t *testing.T) {
	err := mapConstraintErr(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: productPricesWindowKey})
	assert.ErrorIs(t, err, e.ErrDuplicatePriceWindow)
}

func TestMapConstraintErrPassThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, mapConstraintErr(plain))

	other := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "outbox_events_event_id_key"}
	assert.Same(t, other, mapConstraintErr(other))
	assert.True(t, postgresDuplicate(fmt.Errorf("wrap: %w", other)))
	assert.False(t, postgresDuplicate(plain))
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, e.ErrPriceNotFound, notFound(fmt.Errorf("scan: %w", pgx.ErrNoRows), e.ErrPriceNotFound))

	plain := errors.New("boom")
	assert.Equal(t, plain, notFound(plain, e.ErrPriceNotFound))
}
