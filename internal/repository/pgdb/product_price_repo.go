package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductPriceRepo хранит интервалы цен продуктов.
type ProductPriceRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductPriceConverter
}

func NewProductPriceRepo(pool *pgxpool.Pool, conv converter.ProductPriceConverter) *ProductPriceRepo {
	return &ProductPriceRepo{
		pool: pool,
		conv: conv,
	}
}

const priceColumns = `id, product_id, start_date, end_date, price, created_at, updated_at`

func (p *ProductPriceRepo) Create(ctx context.Context, price *domain.ProductPrice) (*domain.ProductPrice, error) {
	// VALUES ($1, $2, $3, $4) product_id, start_date, end_date, price
	query := `
		INSERT INTO product_prices (product_id, start_date, end_date, price)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + priceColumns

	model := p.conv.ToModel(price)
	return p.one(ctx, query, model.ProductID, model.StartDate, model.EndDate, model.Price)
}

func (p *ProductPriceRepo) Update(ctx context.Context, price *domain.ProductPrice) (*domain.ProductPrice, error) {
	query := `
		UPDATE product_prices
		SET start_date = $2, end_date = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + priceColumns

	model := p.conv.ToModel(price)
	return p.one(ctx, query, model.ID, model.StartDate, model.EndDate, model.Price)
}

// GetByID блокирует строку цены до конца текущей транзакции.
func (p *ProductPriceRepo) GetByID(ctx context.Context, id int64) (*domain.ProductPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM product_prices WHERE id = $1 FOR UPDATE`

	return p.one(ctx, query, id)
}

func (p *ProductPriceRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.ProductPrice, error) {
	query := `
		SELECT ` + priceColumns + `
		FROM product_prices
		WHERE product_id = $1
		ORDER BY start_date, id`

	return p.many(ctx, query, productID)
}

// ListByCategory возвращает все цены продуктов категории, блокируя их для массового обновления.
func (p *ProductPriceRepo) ListByCategory(ctx context.Context, categoryID int64) ([]domain.ProductPrice, error) {
	query := `
		SELECT pp.id, pp.product_id, pp.start_date, pp.end_date, pp.price, pp.created_at, pp.updated_at
		FROM product_prices pp
		JOIN products pr ON pr.id = pp.product_id
		WHERE pr.category_id = $1
		ORDER BY pp.start_date, pp.id
		FOR UPDATE OF pp`

	return p.many(ctx, query, categoryID)
}

// ListForAverage отбирает цены категории, чей интервал пересекается с [start, end].
// Сравнение с NULL ложно, поэтому бессрочные цены в выборку не попадают.
func (p *ProductPriceRepo) ListForAverage(ctx context.Context, categoryID int64, start, end time.Time) ([]domain.ProductPrice, error) {
	query := `
		SELECT pp.id, pp.product_id, pp.start_date, pp.end_date, pp.price, pp.created_at, pp.updated_at
		FROM product_prices pp
		JOIN products pr ON pr.id = pp.product_id
		WHERE pr.category_id = $1
		  AND pp.start_date <= $3
		  AND pp.end_date >= $2
		ORDER BY pp.start_date, pp.id`

	return p.many(ctx, query, categoryID, start, end)
}

// DeleteOverlapping удаляет цены продукта, пересекающиеся с [start, end] включительно.
// Отсутствующая дата окончания с обеих сторон трактуется как бесконечность.
func (p *ProductPriceRepo) DeleteOverlapping(ctx context.Context, productID int64, start time.Time, end *time.Time, excludeID int64) ([]domain.ProductPrice, error) {
	query := `
		DELETE FROM product_prices
		WHERE product_id = $1
		  AND id <> $4
		  AND start_date <= COALESCE($3::date, 'infinity'::date)
		  AND COALESCE(end_date, 'infinity'::date) >= $2
		RETURNING ` + priceColumns

	return p.many(ctx, query, productID, start, end, excludeID)
}

func (p *ProductPriceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, `DELETE FROM product_prices WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrPriceNotFound)
	}

	return nil
}

// DeleteByProduct удаляет все цены продукта и возвращает их в состоянии до удаления.
func (p *ProductPriceRepo) DeleteByProduct(ctx context.Context, productID int64) ([]domain.ProductPrice, error) {
	query := `DELETE FROM product_prices WHERE product_id = $1 RETURNING ` + priceColumns

	return p.many(ctx, query, productID)
}

func (p *ProductPriceRepo) one(ctx context.Context, query string, args ...any) (*domain.ProductPrice, error) {
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductPriceModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(mapConstraintErr(err), e.ErrPriceNotFound))
	}

	return p.conv.ToEntity(&model), nil
}

func (p *ProductPriceRepo) many(ctx context.Context, query string, args ...any) ([]domain.ProductPrice, error) {
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductPriceModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}
