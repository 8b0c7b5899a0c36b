package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/price-backend/internal/cfg"
	"github.com/DRSN-tech/price-backend/pkg/clients"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// RateLimiter — счётчик запросов с фиксированным окном.
// Ключ окна содержит его порядковый номер, поэтому счётчик сбрасывается сам.
type RateLimiter struct {
	client *clients.RedisClient
	cfg    *cfg.RateLimitCfg
	now    func() time.Time
}

func NewRateLimiter(client *clients.RedisClient, cfg *cfg.RateLimitCfg) *RateLimiter {
	return &RateLimiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Allow учитывает запрос клиента и сообщает, укладывается ли он в лимит окна.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().UnixNano() / int64(l.cfg.Window)
	redisKey := fmt.Sprintf("rate:%s:%d", key, window)

	pipeline := l.client.Client.TxPipeline()
	incr := pipeline.Incr(ctx, redisKey)
	pipeline.Expire(ctx, redisKey, l.cfg.Window)

	if _, err := pipeline.Exec(ctx); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return incr.Val() <= int64(l.cfg.Requests), nil
}
