package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// memStore — хранилище в памяти, общее для всех заглушек репозиториев.
type memStore struct {
	mu         sync.Mutex
	seq        int64
	categories map[int64]*domain.Category
	products   map[int64]*domain.Product
	prices     map[int64]*domain.ProductPrice
	history    []domain.PriceHistory
	outbox     []*OutboxEvent
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[int64]*domain.Category),
		products:   make(map[int64]*domain.Product),
		prices:     make(map[int64]*domain.ProductPrice),
	}
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

// CATEGORIES

type categoryRepoStub struct{ s *memStore }

func (r categoryRepoStub) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, e.NewFieldError("name", e.ErrCategoryNameTaken)
		}
	}

	cp := *c
	cp.ID = r.s.nextID()
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	r.s.categories[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r categoryRepoStub) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[c.ID]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	existing.Name = c.Name
	existing.UpdatedAt = time.Now()
	out := *existing
	return &out, nil
}

func (r categoryRepoStub) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r categoryRepoStub) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		res = append(res, *c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r categoryRepoStub) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return e.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepoStub) LastModified(_ context.Context) (*time.Time, error) {
	return nil, nil
}

// PRODUCTS

type productRepoStub struct{ s *memStore }

func (r productRepoStub) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return nil, e.NewFieldError("sku", e.ErrProductSKUTaken)
		}
	}

	cp := *p
	cp.ID = r.s.nextID()
	r.s.products[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r productRepoStub) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.ErrProductNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	out := cp
	return &out, nil
}

func (r productRepoStub) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (r productRepoStub) List(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Product, 0)
	for _, p := range r.s.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r productRepoStub) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return e.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r productRepoStub) LastModified(_ context.Context) (*time.Time, error) {
	return nil, nil
}

// PRICES

type priceRepoStub struct{ s *memStore }

func (r priceRepoStub) duplicate(p *domain.ProductPrice) bool {
	for _, existing := range r.s.prices {
		if existing.ID == p.ID || existing.ProductID != p.ProductID {
			continue
		}
		if existing.StartDate.Equal(p.StartDate) && sameEnd(existing.EndDate, p.EndDate) {
			return true
		}
	}
	return false
}

func (r priceRepoStub) Create(_ context.Context, p *domain.ProductPrice) (*domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.duplicate(p) {
		return nil, e.ErrDuplicatePriceWindow
	}

	cp := p.Clone()
	cp.ID = r.s.nextID()
	r.s.prices[cp.ID] = cp
	return cp.Clone(), nil
}

func (r priceRepoStub) Update(_ context.Context, p *domain.ProductPrice) (*domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.prices[p.ID]; !ok {
		return nil, e.ErrPriceNotFound
	}
	if r.duplicate(p) {
		return nil, e.ErrDuplicatePriceWindow
	}

	r.s.prices[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (r priceRepoStub) GetByID(_ context.Context, id int64) (*domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.prices[id]
	if !ok {
		return nil, e.ErrPriceNotFound
	}
	return p.Clone(), nil
}

func (r priceRepoStub) collect(match func(p *domain.ProductPrice) bool) []domain.ProductPrice {
	res := make([]domain.ProductPrice, 0)
	for _, p := range r.s.prices {
		if match(p) {
			res = append(res, *p.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].StartDate.Equal(res[j].StartDate) {
			return res[i].ID < res[j].ID
		}
		return res[i].StartDate.Before(res[j].StartDate)
	})
	return res
}

func (r priceRepoStub) ListByProduct(_ context.Context, productID int64) ([]domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(p *domain.ProductPrice) bool { return p.ProductID == productID }), nil
}

func (r priceRepoStub) inCategory(p *domain.ProductPrice, categoryID int64) bool {
	product, ok := r.s.products[p.ProductID]
	return ok && product.CategoryID == categoryID
}

func (r priceRepoStub) ListByCategory(_ context.Context, categoryID int64) ([]domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(p *domain.ProductPrice) bool { return r.inCategory(p, categoryID) }), nil
}

func (r priceRepoStub) ListForAverage(_ context.Context, categoryID int64, start, end time.Time) ([]domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(p *domain.ProductPrice) bool {
		return r.inCategory(p, categoryID) && p.InAggregationWindow(start, end)
	}), nil
}

func (r priceRepoStub) DeleteOverlapping(_ context.Context, productID int64, start time.Time, end *time.Time, excludeID int64) ([]domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := r.collect(func(p *domain.ProductPrice) bool {
		return p.ProductID == productID && p.ID != excludeID && p.Overlaps(start, end)
	})
	for _, p := range removed {
		delete(r.s.prices, p.ID)
	}
	return removed, nil
}

func (r priceRepoStub) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.prices[id]; !ok {
		return e.ErrPriceNotFound
	}
	delete(r.s.prices, id)
	return nil
}

func (r priceRepoStub) DeleteByProduct(_ context.Context, productID int64) ([]domain.ProductPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := r.collect(func(p *domain.ProductPrice) bool { return p.ProductID == productID })
	for _, p := range removed {
		delete(r.s.prices, p.ID)
	}
	return removed, nil
}

// HISTORY & OUTBOX

type historyRepoStub struct{ s *memStore }

func (r historyRepoStub) Create(_ context.Context, h *domain.PriceHistory) (*domain.PriceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *h
	cp.ID = r.s.nextID()
	cp.ChangeDate = time.Now()
	r.s.history = append(r.s.history, cp)
	return &cp, nil
}

func (r historyRepoStub) List(_ context.Context, filter PriceHistoryFilter) ([]domain.PriceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.PriceHistory, 0)
	for i := len(r.s.history) - 1; i >= 0; i-- {
		h := r.s.history[i]
		if filter.Action != nil && h.Action != *filter.Action {
			continue
		}
		if filter.Search != "" && !strings.Contains(h.ProductName, filter.Search) && !strings.Contains(h.ProductSKU, filter.Search) {
			continue
		}
		res = append(res, h)
	}

	if filter.Offset >= len(res) {
		return []domain.PriceHistory{}, nil
	}
	res = res[filter.Offset:]
	if len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

type outboxRepoStub struct{ s *memStore }

func (r outboxRepoStub) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev.ID = r.s.nextID()
	r.s.outbox = append(r.s.outbox, ev)
	return ev, nil
}

func (r outboxRepoStub) GetAndMarkAsProcessing(_ context.Context, _ int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r outboxRepoStub) MarkAsProcessed(_ context.Context, _ int64) error {
	return nil
}

func (r outboxRepoStub) ReleaseStuck(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

// INFRASTRUCTURE

// txStub выполняет fn без транзакции; откат в тестах не проверяется.
type txStub struct{}

func (txStub) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type encoderStub struct{}

func (encoderStub) EncodePriceHistory(productID int64, h *domain.PriceHistory) ([]byte, error) {
	return []byte(fmt.Sprintf("%d:%s:%s", productID, h.Action, h.Price)), nil
}

type cacheStub struct {
	mu          sync.Mutex
	entries     map[AveragePriceKey]*domain.AveragePrice
	versions    map[int64]int64
	invalidated []int64
	getErr      error
	gets        int
	sets        int
	beforeSet   func()
}

func newCacheStub() *cacheStub {
	return &cacheStub{
		entries:  make(map[AveragePriceKey]*domain.AveragePrice),
		versions: make(map[int64]int64),
	}
}

func (c *cacheStub) GetAveragePrice(_ context.Context, key AveragePriceKey) (*AveragePriceLookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	avg, ok := c.entries[key]
	return &AveragePriceLookup{Average: avg, Version: c.versions[key.CategoryID], Hit: ok}, nil
}

// SetAveragePrice отбрасывает запись под устаревшей версией: в Redis её просто никто не прочитает.
func (c *cacheStub) SetAveragePrice(_ context.Context, key AveragePriceKey, version int64, avg *domain.AveragePrice) error {
	if c.beforeSet != nil {
		hook := c.beforeSet
		c.beforeSet = nil
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	if version != c.versions[key.CategoryID] {
		return nil
	}
	c.entries[key] = avg
	return nil
}

func (c *cacheStub) InvalidateCategory(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidated = append(c.invalidated, ids...)
	for _, id := range ids {
		c.versions[id]++
	}
	for key := range c.entries {
		for _, id := range ids {
			if key.CategoryID == id {
				delete(c.entries, key)
			}
		}
	}
	return nil
}

// FIXTURE

type fixture struct {
	store    *memStore
	cache    *cacheStub
	prices   *PriceUseCase
	catalog  *CatalogUseCase
	average  *AveragePriceUseCase
	recorder *HistoryRecorder
}

func newFixture() *fixture {
	s := newMemStore()
	cache := newCacheStub()
	log := logger.NewNopLogger()

	categories := categoryRepoStub{s}
	products := productRepoStub{s}
	prices := priceRepoStub{s}
	recorder := NewHistoryRecorder(historyRepoStub{s}, outboxRepoStub{s}, encoderStub{}, log)

	return &fixture{
		store:    s,
		cache:    cache,
		recorder: recorder,
		prices:   NewPriceUC(txStub{}, products, categories, prices, recorder, cache, log),
		catalog:  NewCatalogUC(txStub{}, categories, products, prices, recorder, cache, log),
		average:  NewAveragePriceUC(categories, prices, cache, log),
	}
}

func (f *fixture) category(name string) *domain.Category {
	c, err := f.catalog.CreateCategory(context.Background(), &CategoryReq{Name: name})
	if err != nil {
		panic(err)
	}
	return c
}

func (f *fixture) product(categoryID int64, name, sku string) *domain.Product {
	p, err := f.catalog.CreateProduct(context.Background(), &ProductReq{Name: name, CategoryID: categoryID, SKU: sku})
	if err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) historyActions() []domain.PriceAction {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	res := make([]domain.PriceAction, 0, len(f.store.history))
	for _, h := range f.store.history {
		res = append(res, h.Action)
	}
	return res
}

func (f *fixture) lastHistory() domain.PriceHistory {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	return f.store.history[len(f.store.history)-1]
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := day(s)
	return &t
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sameEnd(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
