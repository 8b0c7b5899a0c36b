package tr

import (
	"context"

	"github.com/DRSN-tech/price-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Manager выполняет fn в рамках одной транзакции.
// Вложенные вызовы Do переиспользуют уже открытую транзакцию из контекста.
type Manager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewManager создаёт менеджер транзакций поверх пула pgx.
func NewManager(pool *pgxpool.Pool) (*manager.Manager, error) {
	m, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		return nil, e.Wrap("tr.NewManager", err)
	}

	return m, nil
}

// Conn возвращает транзакцию из контекста, а если её нет — сам пул.
func Conn(ctx context.Context, pool *pgxpool.Pool) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, pool)
}
