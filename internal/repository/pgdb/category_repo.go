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

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

const categoryColumns = `id, name, created_at, updated_at`

func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING ` + categoryColumns

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, category.Name)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapConstraintErr(err))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, category.ID, category.Name)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(mapConstraintErr(err), e.ErrCategoryNotFound))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrCategoryNotFound))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY id`

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}

// Delete удаляет категорию. Продукты и цены к этому моменту должны быть удалены
// вызывающей стороной, чтобы каждая удалённая цена попала в журнал.
func (c *CategoryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

// LastModified возвращает время последнего изменения категорий; nil, если категорий нет.
func (c *CategoryRepo) LastModified(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, `SELECT MAX(updated_at) FROM categories`).Scan(&last); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return last, nil
}
