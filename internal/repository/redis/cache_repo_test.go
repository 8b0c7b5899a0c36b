package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/price-backend/internal/cfg"
	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/clients"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*clients.RedisClient, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := clients.NewRedisClient(&cfg.RedisCfg{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}

func testKey(categoryID int64, period domain.AveragePricePeriod) usecase.AveragePriceKey {
	return usecase.AveragePriceKey{
		CategoryID: categoryID,
		StartDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		Period:     period,
	}
}

func TestCacheRepoRoundTrip(t *testing.T) {
	client, srv := newTestClient(t)
	repo := NewCacheRepo(client, converter.AveragePriceConverter{}, &cfg.RedisCfg{AverageTTL: time.Minute}, logger.NewNopLogger())
	ctx := context.Background()

	key := testKey(1, domain.PeriodMonth)
	lookup, err := repo.GetAveragePrice(ctx, key)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)

	avg := &domain.AveragePrice{
		Period: domain.PeriodMonth,
		Buckets: []domain.PeriodAverage{
			{Period: 1, AvgPrice: decimal.RequireFromString("10.50")},
			{Period: 3, AvgPrice: decimal.RequireFromString("7.00")},
		},
	}
	require.NoError(t, repo.SetAveragePrice(ctx, key, lookup.Version, avg))

	lookup, err = repo.GetAveragePrice(ctx, key)
	require.NoError(t, err)
	require.True(t, lookup.Hit)
	require.Len(t, lookup.Average.Buckets, 2)
	assert.Equal(t, 3, lookup.Average.Buckets[1].Period)
	assert.Equal(t, "10.50", lookup.Average.Buckets[0].AvgPrice.StringFixed(2))

	srv.FastForward(2 * time.Minute)
	lookup, err = repo.GetAveragePrice(ctx, key)
	require.NoError(t, err)
	assert.False(t, lookup.Hit, "entry expires after TTL")
}

func TestCacheRepoInvalidateCategory(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewCacheRepo(client, converter.AveragePriceConverter{}, &cfg.RedisCfg{AverageTTL: time.Hour}, logger.NewNopLogger())
	ctx := context.Background()

	avg := &domain.AveragePrice{Period: domain.PeriodWhole, Average: decimal.NewFromInt(5)}
	require.NoError(t, repo.SetAveragePrice(ctx, testKey(1, domain.PeriodWhole), 0, avg))
	require.NoError(t, repo.SetAveragePrice(ctx, testKey(2, domain.PeriodWhole), 0, avg))

	require.NoError(t, repo.InvalidateCategory(ctx, 1))

	lookup, err := repo.GetAveragePrice(ctx, testKey(1, domain.PeriodWhole))
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Equal(t, int64(1), lookup.Version)

	lookup, err = repo.GetAveragePrice(ctx, testKey(2, domain.PeriodWhole))
	require.NoError(t, err)
	require.True(t, lookup.Hit)
	assert.True(t, decimal.NewFromInt(5).Equal(lookup.Average.Average))

	require.NoError(t, repo.InvalidateCategory(ctx))
}

func TestCacheRepoResultComputedBeforeInvalidationIsNotServed(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewCacheRepo(client, converter.AveragePriceConverter{}, &cfg.RedisCfg{AverageTTL: time.Hour}, logger.NewNopLogger())
	ctx := context.Background()
	key := testKey(1, domain.PeriodWhole)

	lookup, err := repo.GetAveragePrice(ctx, key)
	require.NoError(t, err)
	require.False(t, lookup.Hit)

	// цена изменилась, пока среднее считалось по старым данным
	require.NoError(t, repo.InvalidateCategory(ctx, 1))

	stale := &domain.AveragePrice{Period: domain.PeriodWhole, Average: decimal.RequireFromString("100.00")}
	require.NoError(t, repo.SetAveragePrice(ctx, key, lookup.Version, stale))

	lookup, err = repo.GetAveragePrice(ctx, key)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
}

func TestRateLimiterFixedWindow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, &cfg.RateLimitCfg{Requests: 3, Window: time.Minute})
	now := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "limits are per client")

	now = now.Add(time.Minute)
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts a new count")
}
