package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrReplacePriceReplacesOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cat := f.category("Electronics")
	prod := f.product(cat.ID, "Phone", "PH-1")

	old, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-06-30"), money("100")))
	require.NoError(t, err)

	cur, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-04-01"), dayPtr("2023-12-31"), money("120")))
	require.NoError(t, err)

	prices, err := f.prices.ListProductPrices(ctx, prod.ID)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, cur.ID, prices[0].ID)
	assert.NotEqual(t, old.ID, cur.ID)

	assert.Equal(t, []domain.PriceAction{domain.ActionCreated, domain.ActionDeleted, domain.ActionCreated}, f.historyActions())

	deleted := f.store.history[1]
	assert.Equal(t, "Phone", deleted.ProductName)
	assert.Equal(t, "PH-1", deleted.ProductSKU)
	assert.True(t, money("100").Equal(deleted.Price))
	assert.Equal(t, day("2023-06-30"), *deleted.EndDate)

	created := f.lastHistory()
	assert.True(t, money("120").Equal(created.Price))
	assert.Equal(t, day("2023-04-01"), created.StartDate)

	assert.Len(t, f.store.outbox, 3)
	assert.Equal(t, PriceDeletedEvent, f.store.outbox[1].EventType)
	assert.Contains(t, f.cache.invalidated, cat.ID)
}

func TestCreateOrReplacePriceKeepsNonOverlapping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Books").ID, "Novel", "BK-1")

	_, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-01-31"), money("10")))
	require.NoError(t, err)
	_, err = f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-02-01"), dayPtr("2023-02-28"), money("11")))
	require.NoError(t, err)

	prices, err := f.prices.ListProductPrices(ctx, prod.ID)
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, day("2023-01-01"), prices[0].StartDate)
}

func TestCreateOrReplacePriceOpenEndedOverlapsEverythingAfter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Books").ID, "Novel", "BK-1")

	_, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), nil, money("10")))
	require.NoError(t, err)
	_, err = f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2030-01-01"), dayPtr("2030-01-31"), money("11")))
	require.NoError(t, err)

	prices, err := f.prices.ListProductPrices(ctx, prod.ID)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, day("2030-01-01"), prices[0].StartDate)
}

func TestCreateOrReplacePriceNoOverlapInvariant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	windows := []struct{ start, end string }{
		{"2023-01-01", "2023-03-31"},
		{"2023-03-01", "2023-05-31"},
		{"2023-06-01", ""},
		{"2023-02-15", "2023-02-20"},
		{"2023-05-31", "2023-06-01"},
		{"2022-12-01", "2023-01-01"},
	}
	for _, w := range windows {
		_, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day(w.start), dayPtr(w.end), money("1")))
		require.NoError(t, err)

		prices, err := f.prices.ListProductPrices(ctx, prod.ID)
		require.NoError(t, err)
		for i := range prices {
			for j := range prices {
				if i == j {
					continue
				}
				assert.False(t, prices[i].Overlaps(prices[j].StartDate, prices[j].EndDate),
					"%v overlaps %v", prices[i], prices[j])
			}
		}
	}
}

func TestCreateOrReplacePriceValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	_, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2022-12-31"), money("1")))
	require.ErrorIs(t, err, e.ErrEndDateBeforeStartDate)
	fe, ok := e.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "end_date", fe.Field)

	_, err = f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), nil, money("0")))
	require.ErrorIs(t, err, e.ErrPriceMustBePositive)

	_, err = f.prices.CreateOrReplacePrice(ctx, 999, NewSavePriceReq(day("2023-01-01"), nil, money("1")))
	require.ErrorIs(t, err, e.ErrProductNotFound)

	assert.Empty(t, f.historyActions())
}

func TestUpdatePriceNoopWritesNoHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	p, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-12-31"), money("5.50")))
	require.NoError(t, err)
	before := len(f.historyActions())

	_, err = f.prices.UpdatePrice(ctx, p.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-12-31"), money("5.5")))
	require.NoError(t, err)

	assert.Len(t, f.historyActions(), before)
}

func TestUpdatePriceRecordsNewValues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	p, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-12-31"), money("5")))
	require.NoError(t, err)
	neighbour, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2024-02-01"), dayPtr("2024-02-28"), money("6")))
	require.NoError(t, err)

	updated, err := f.prices.UpdatePrice(ctx, p.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2024-06-30"), money("7")))
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)

	_, err = f.prices.UpdatePrice(ctx, neighbour.ID, NewSavePriceReq(day("2024-02-01"), nil, money("6")))
	require.ErrorIs(t, err, e.ErrPriceNotFound, "neighbour was purged by the update")

	assert.Equal(t, []domain.PriceAction{
		domain.ActionCreated, domain.ActionCreated, domain.ActionDeleted, domain.ActionUpdated,
	}, f.historyActions())

	last := f.lastHistory()
	assert.True(t, money("7").Equal(last.Price))
	assert.Equal(t, day("2024-06-30"), *last.EndDate)
}

func TestUpdatePriceValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	p, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), nil, money("5")))
	require.NoError(t, err)

	_, err = f.prices.UpdatePrice(ctx, p.ID, NewSavePriceReq(day("2023-01-01"), nil, money("5.001")))
	require.ErrorIs(t, err, e.ErrPricePrecision)

	_, err = f.prices.UpdatePrice(ctx, 12345, NewSavePriceReq(day("2023-01-01"), nil, money("5")))
	require.ErrorIs(t, err, e.ErrPriceNotFound)
}

func TestDeletePriceRecordsHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.product(f.category("Food").ID, "Milk", "ML-1")

	p, err := f.prices.CreateOrReplacePrice(ctx, prod.ID, NewSavePriceReq(day("2023-01-01"), nil, money("5")))
	require.NoError(t, err)

	require.NoError(t, f.prices.DeletePrice(ctx, p.ID))
	assert.Equal(t, domain.ActionDeleted, f.lastHistory().Action)
	assert.Nil(t, f.lastHistory().EndDate)

	require.ErrorIs(t, f.prices.DeletePrice(ctx, p.ID), e.ErrPriceNotFound)
}

func TestSetCategoryPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cat := f.category("Food")
	other := f.category("Toys")
	milk := f.product(cat.ID, "Milk", "ML-1")
	bread := f.product(cat.ID, "Bread", "BR-1")
	ball := f.product(other.ID, "Ball", "BL-1")

	_, err := f.prices.CreateOrReplacePrice(ctx, milk.ID, NewSavePriceReq(day("2023-01-01"), dayPtr("2023-06-30"), money("2")))
	require.NoError(t, err)
	_, err = f.prices.CreateOrReplacePrice(ctx, bread.ID, NewSavePriceReq(day("2023-01-01"), nil, money("3")))
	require.NoError(t, err)
	_, err = f.prices.CreateOrReplacePrice(ctx, bread.ID, NewSavePriceReq(day("2022-01-01"), dayPtr("2022-12-31"), money("9.99")))
	require.NoError(t, err)
	_, err = f.prices.CreateOrReplacePrice(ctx, ball.ID, NewSavePriceReq(day("2023-01-01"), nil, money("4")))
	require.NoError(t, err)
	before := len(f.historyActions())

	require.NoError(t, f.prices.SetCategoryPrice(ctx, &SetCategoryPriceReq{CategoryID: cat.ID, Price: money("9.99")}))

	for _, id := range []int64{milk.ID, bread.ID} {
		prices, err := f.prices.ListProductPrices(ctx, id)
		require.NoError(t, err)
		for _, p := range prices {
			assert.True(t, money("9.99").Equal(p.Price))
		}
	}

	ballPrices, err := f.prices.ListProductPrices(ctx, ball.ID)
	require.NoError(t, err)
	assert.True(t, money("4").Equal(ballPrices[0].Price))

	// цена 9.99 у второй цены хлеба уже была, поэтому "updated" пишется только дважды
	actions := f.historyActions()[before:]
	assert.Equal(t, []domain.PriceAction{domain.ActionUpdated, domain.ActionUpdated}, actions)
	assert.Contains(t, f.cache.invalidated, cat.ID)
}

func TestSetCategoryPriceErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.prices.SetCategoryPrice(ctx, &SetCategoryPriceReq{CategoryID: 1, Price: money("-1")})
	require.ErrorIs(t, err, e.ErrPriceMustBePositive)

	err = f.prices.SetCategoryPrice(ctx, &SetCategoryPriceReq{CategoryID: 42, Price: money("1")})
	require.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestListProductPricesUnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.prices.ListProductPrices(context.Background(), 7)
	require.ErrorIs(t, err, e.ErrProductNotFound)
}
