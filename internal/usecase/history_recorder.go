package usecase

import (
	"context"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// HistoryRecorder пишет журнал изменений цен и ставит каждое событие в outbox.
// Вызывается явно из операций над ценами в той же транзакции, что и само изменение.
type HistoryRecorder struct {
	historyRepo PriceHistoryRepository
	outboxRepo  OutboxRepository
	encoder     HistoryEventEncoder
	logger      logger.Logger
}

func NewHistoryRecorder(
	historyRepo PriceHistoryRepository,
	outboxRepo OutboxRepository,
	encoder HistoryEventEncoder,
	logger logger.Logger,
) *HistoryRecorder {
	return &HistoryRecorder{
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		encoder:     encoder,
		logger:      logger,
	}
}

// RecordCreated фиксирует первое сохранение цены.
func (h *HistoryRecorder) RecordCreated(ctx context.Context, product *domain.Product, price *domain.ProductPrice) error {
	return h.record(ctx, domain.ActionCreated, product, price)
}

// RecordUpdated фиксирует новые значения цены, если изменились даты или сумма.
// Возвращает false, если запись в журнал не понадобилась.
func (h *HistoryRecorder) RecordUpdated(ctx context.Context, product *domain.Product, prev, cur *domain.ProductPrice) (bool, error) {
	if !cur.HasChanges(prev) {
		return false, nil
	}

	if err := h.record(ctx, domain.ActionUpdated, product, cur); err != nil {
		return false, err
	}

	return true, nil
}

// RecordDeleted фиксирует цену в состоянии непосредственно перед удалением.
func (h *HistoryRecorder) RecordDeleted(ctx context.Context, product *domain.Product, price *domain.ProductPrice) error {
	return h.record(ctx, domain.ActionDeleted, product, price)
}

// ListHistory возвращает журнал, новые записи первыми.
func (h *HistoryRecorder) ListHistory(ctx context.Context, filter PriceHistoryFilter) ([]domain.PriceHistory, error) {
	const op = "HistoryRecorder.ListHistory"

	filter.Normalize()
	if filter.From != nil && filter.To != nil {
		if err := domain.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	entries, err := h.historyRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return entries, nil
}

func (h *HistoryRecorder) record(ctx context.Context, action domain.PriceAction, product *domain.Product, price *domain.ProductPrice) error {
	const op = "HistoryRecorder.record"

	entry, err := h.historyRepo.Create(ctx, domain.NewPriceHistory(product, price, action))
	if err != nil {
		return e.Wrap(op, err)
	}

	payload, err := h.encoder.EncodePriceHistory(product.ID, entry)
	if err != nil {
		return e.Wrap(op, err)
	}

	if _, err := h.outboxRepo.Create(ctx, NewOutboxEvent(eventTypeFor(action), product.ID, payload)); err != nil {
		return e.Wrap(op, err)
	}

	h.logger.Debugf("price history: %s %s [%s] price=%s", action, product.SKU, price.StartDate.Format(domain.DateLayout), price.Price)
	return nil
}
