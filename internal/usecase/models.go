package usecase

import (
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CATALOG

type CategoryReq struct {
	Name string
}

type ProductReq struct {
	Name        string
	CategoryID  int64
	SKU         string
	Description string
}

// ProductFilter — фильтр списка продуктов; CategoryID == nil означает все категории.
type ProductFilter struct {
	CategoryID *int64
}

// PRICES

// SavePriceReq — запрос на создание цены продукта или изменение существующей цены.
type SavePriceReq struct {
	StartDate time.Time
	EndDate   *time.Time
	Price     decimal.Decimal
}

type SetCategoryPriceReq struct {
	CategoryID int64
	Price      decimal.Decimal
}

// AveragePriceReq — запрос средней цены категории за период.
type AveragePriceReq struct {
	CategoryID int64
	StartDate  time.Time
	EndDate    time.Time
	Period     string
}

// AveragePriceRes — результат агрегации; NoData означает, что в диапазон не попало ни одной цены.
type AveragePriceRes struct {
	Average *domain.AveragePrice
	NoData  bool
}

// AveragePriceKey однозначно определяет закэшированный результат агрегации.
type AveragePriceKey struct {
	CategoryID int64
	StartDate  time.Time
	EndDate    time.Time
	Period     domain.AveragePricePeriod
}

// AveragePriceLookup — результат чтения кэша. Version — версия категории на момент чтения:
// результат, посчитанный после промаха, записывается под неё, а не под текущую.
type AveragePriceLookup struct {
	Average *domain.AveragePrice
	Version int64
	Hit     bool
}

// HISTORY

// PriceHistoryFilter — фильтр журнала истории цен.
type PriceHistoryFilter struct {
	Search string // подстрока имени или SKU продукта
	Action *domain.PriceAction
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Normalize приводит пагинацию к допустимым значениям.
func (f *PriceHistoryFilter) Normalize() {
	if f.Limit < 1 || f.Limit > MaxHistoryLimit {
		f.Limit = DefaultHistoryLimit
	}

	if f.Offset < 0 {
		f.Offset = 0
	}
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	PriceCreatedEvent OutboxEventType = "price.created"
	PriceUpdatedEvent OutboxEventType = "price.updated"
	PriceDeletedEvent OutboxEventType = "price.deleted"
)

// OutboxEvent — событие, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// WriteRawMessageReq — уже сериализованное сообщение для Kafka.
type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

// MAPPERS

func NewOutboxEvent(eventType OutboxEventType, productID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		ProductID: productID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}

func NewSavePriceReq(startDate time.Time, endDate *time.Time, price decimal.Decimal) *SavePriceReq {
	return &SavePriceReq{
		StartDate: startDate,
		EndDate:   endDate,
		Price:     price,
	}
}

func NewAveragePriceReq(categoryID int64, startDate, endDate time.Time, period string) *AveragePriceReq {
	return &AveragePriceReq{
		CategoryID: categoryID,
		StartDate:  startDate,
		EndDate:    endDate,
		Period:     period,
	}
}

func eventTypeFor(action domain.PriceAction) OutboxEventType {
	switch action {
	case domain.ActionCreated:
		return PriceCreatedEvent
	case domain.ActionUpdated:
		return PriceUpdatedEvent
	default:
		return PriceDeletedEvent
	}
}
