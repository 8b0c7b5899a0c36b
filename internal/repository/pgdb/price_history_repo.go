package pgdb

import (
	"context"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// PriceHistoryRepo — журнал изменений цен. Только вставка и чтение.
type PriceHistoryRepo struct {
	pool *pgxpool.Pool
	conv converter.PriceHistoryConverter
}

func NewPriceHistoryRepo(pool *pgxpool.Pool, conv converter.PriceHistoryConverter) *PriceHistoryRepo {
	return &PriceHistoryRepo{
		pool: pool,
		conv: conv,
	}
}

const historyColumns = `id, product_name, product_sku, start_date, end_date, price, action, change_date`

func (h *PriceHistoryRepo) Create(ctx context.Context, entry *domain.PriceHistory) (*domain.PriceHistory, error) {
	query := `
		INSERT INTO price_history (product_name, product_sku, start_date, end_date, price, action)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + historyColumns

	model := h.conv.ToModel(entry)
	rows, err := tr.Conn(ctx, h.pool).Query(ctx, query,
		model.ProductName,
		model.ProductSKU,
		model.StartDate,
		model.EndDate,
		model.Price,
		model.Action,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.PriceHistoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return h.conv.ToEntity(&created), nil
}

// List возвращает записи журнала, новые первыми.
// Search ищет подстроку в имени или SKU продукта без учёта регистра; From и To — границы даты изменения включительно.
func (h *PriceHistoryRepo) List(ctx context.Context, filter usecase.PriceHistoryFilter) ([]domain.PriceHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM price_history
		WHERE ($1::text = '' OR product_name ILIKE '%' || $1 || '%' OR product_sku ILIKE '%' || $1 || '%')
		  AND ($2::text IS NULL OR action = $2)
		  AND ($3::date IS NULL OR change_date >= $3::date)
		  AND ($4::date IS NULL OR change_date < $4::date + 1)
		ORDER BY change_date DESC, id DESC
		LIMIT $5 OFFSET $6`

	var action *string
	if filter.Action != nil {
		a := string(*filter.Action)
		action = &a
	}

	rows, err := tr.Conn(ctx, h.pool).Query(ctx, query,
		filter.Search,
		action,
		filter.From,
		filter.To,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.PriceHistoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return h.conv.ToArrEntity(models), nil
}
