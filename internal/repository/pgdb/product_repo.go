package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productColumns = `id, name, category_id, sku, description, created_at, updated_at`

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	// VALUES ($1, $2, $3, $4) name, category_id, sku, description
	query := `
		INSERT INTO products (name, category_id, sku, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, model.Name, model.CategoryID, model.SKU, model.Description)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapConstraintErr(err))
	}

	return p.conv.ToEntity(&created), nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, category_id = $3, sku = $4, description = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, model.ID, model.Name, model.CategoryID, model.SKU, model.Description)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(mapConstraintErr(err), e.ErrProductNotFound))
	}

	return p.conv.ToEntity(&updated), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(&model), nil
}

// List возвращает продукты, при заданном фильтре — только одной категории.
func (p *ProductRepo) List(ctx context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::bigint IS NULL OR category_id = $1)
		ORDER BY id`

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, filter.CategoryID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// LastModified возвращает время последнего изменения продуктов; nil, если продуктов нет.
func (p *ProductRepo) LastModified(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := tr.Conn(ctx, p.pool).QueryRow(ctx, `SELECT MAX(updated_at) FROM products`).Scan(&last); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return last, nil
}
