package usecase

import (
	"context"

	"github.com/DRSN-tech/price-backend/internal/domain"
)

// TxManager выполняет fn в одной транзакции БД.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MessageProducer публикует сообщения в брокер.
type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// HistoryEventEncoder сериализует запись истории для публикации в брокер.
type HistoryEventEncoder interface {
	EncodePriceHistory(productID int64, entry *domain.PriceHistory) ([]byte, error)
}

// RateLimiter считает запросы клиента в текущем окне.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
