package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUpdatedSkipsUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := &domain.Product{ID: 1, Name: "Milk", SKU: "ML-1"}
	prev := domain.NewProductPrice(1, day("2023-01-01"), nil, money("1.00"))

	written, err := f.recorder.RecordUpdated(ctx, product, prev, prev.Clone())
	require.NoError(t, err)
	assert.False(t, written)
	assert.Empty(t, f.store.history)
	assert.Empty(t, f.store.outbox)

	cur := prev.Clone()
	cur.EndDate = dayPtr("2023-02-01")
	written, err = f.recorder.RecordUpdated(ctx, product, prev, cur)
	require.NoError(t, err)
	assert.True(t, written)

	entry := f.lastHistory()
	assert.Equal(t, domain.ActionUpdated, entry.Action)
	assert.Equal(t, day("2023-02-01"), *entry.EndDate)

	require.Len(t, f.store.outbox, 1)
	ev := f.store.outbox[0]
	assert.Equal(t, PriceUpdatedEvent, ev.EventType)
	assert.Equal(t, Pending, ev.Status)
	assert.Equal(t, int64(1), ev.ProductID)
	assert.Equal(t, "1:updated:1", string(ev.Payload))
}

func TestListHistoryFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	milk := &domain.Product{ID: 1, Name: "Milk", SKU: "ML-1"}
	bread := &domain.Product{ID: 2, Name: "Bread", SKU: "BR-1"}
	p := domain.NewProductPrice(1, day("2023-01-01"), nil, money("1"))

	require.NoError(t, f.recorder.RecordCreated(ctx, milk, p))
	require.NoError(t, f.recorder.RecordCreated(ctx, bread, p))
	require.NoError(t, f.recorder.RecordDeleted(ctx, milk, p))

	all, err := f.recorder.ListHistory(ctx, PriceHistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ActionDeleted, all[0].Action, "newest first")

	deleted := domain.ActionDeleted
	onlyDeleted, err := f.recorder.ListHistory(ctx, PriceHistoryFilter{Action: &deleted})
	require.NoError(t, err)
	assert.Len(t, onlyDeleted, 1)

	bySKU, err := f.recorder.ListHistory(ctx, PriceHistoryFilter{Search: "BR-"})
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, "Bread", bySKU[0].ProductName)

	page, err := f.recorder.ListHistory(ctx, PriceHistoryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Bread", page[0].ProductName)

	_, err = f.recorder.ListHistory(ctx, PriceHistoryFilter{From: dayPtr("2023-02-01"), To: dayPtr("2023-01-01")})
	require.ErrorIs(t, err, e.ErrInvalidDateRange)
}

func TestPriceHistoryFilterNormalize(t *testing.T) {
	f := PriceHistoryFilter{Limit: 0, Offset: -3}
	f.Normalize()
	assert.Equal(t, DefaultHistoryLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = PriceHistoryFilter{Limit: MaxHistoryLimit + 1}
	f.Normalize()
	assert.Equal(t, DefaultHistoryLimit, f.Limit)

	f = PriceHistoryFilter{Limit: 10}
	f.Normalize()
	assert.Equal(t, 10, f.Limit)
}
