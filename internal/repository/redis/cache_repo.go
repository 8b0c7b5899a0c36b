package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/price-backend/internal/cfg"
	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/clients"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует средние цены категорий.
//
// Ключ результата включает версию категории. Любое изменение цен категории
// увеличивает версию (INCR), и старые ключи просто перестают читаться, доживая до TTL.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.AveragePriceConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.AveragePriceConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetAveragePrice читает версию категории и результат под ней.
// Версия возвращается и при промахе: под неё потом пишет SetAveragePrice.
func (c *CacheRepo) GetAveragePrice(ctx context.Context, key usecase.AveragePriceKey) (*usecase.AveragePriceLookup, error) {
	version, err := c.version(ctx, key.CategoryID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lookup := &usecase.AveragePriceLookup{Version: version}

	data, err := c.client.Client.Get(ctx, c.averageKey(key, version)).Bytes()
	if errors.Is(err, r.Nil) {
		return lookup, nil // cache miss
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.AveragePriceRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return lookup, nil
	}

	lookup.Average = c.conv.ToDomain(&model)
	lookup.Hit = true
	return lookup, nil
}

func (c *CacheRepo) SetAveragePrice(ctx context.Context, key usecase.AveragePriceKey, version int64, avg *domain.AveragePrice) error {
	data, err := json.Marshal(c.conv.ToRedisModel(avg))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.averageKey(key, version), data, c.cfg.AverageTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// InvalidateCategory поднимает версии категорий одним pipeline.
func (c *CacheRepo) InvalidateCategory(ctx context.Context, categoryIDs ...int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	pipeline := c.client.Client.Pipeline()
	for _, id := range categoryIDs {
		pipeline.Incr(ctx, c.versionKey(id))
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// version возвращает текущую версию категории; отсутствующий ключ — версия 0.
func (c *CacheRepo) version(ctx context.Context, categoryID int64) (int64, error) {
	v, err := c.client.Client.Get(ctx, c.versionKey(categoryID)).Int64()
	if errors.Is(err, r.Nil) {
		return 0, nil
	}

	return v, err
}

func (c *CacheRepo) versionKey(categoryID int64) string {
	return fmt.Sprintf("avg_price:ver:%d", categoryID)
}

func (c *CacheRepo) averageKey(key usecase.AveragePriceKey, version int64) string {
	return fmt.Sprintf("avg_price:%d:v%d:%s:%s:%s",
		key.CategoryID,
		version,
		key.StartDate.Format(domain.DateLayout),
		key.EndDate.Format(domain.DateLayout),
		key.Period,
	)
}
