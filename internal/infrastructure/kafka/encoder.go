package kafka

import (
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// HistoryEventEncoder сериализует запись журнала цен в protobuf Struct.
// Цена передаётся строкой, чтобы не терять точность NUMERIC.
type HistoryEventEncoder struct{}

func NewHistoryEventEncoder() *HistoryEventEncoder {
	return &HistoryEventEncoder{}
}

func (HistoryEventEncoder) EncodePriceHistory(productID int64, entry *domain.PriceHistory) ([]byte, error) {
	var endDate any
	if entry.EndDate != nil {
		endDate = entry.EndDate.Format(domain.DateLayout)
	}

	event, err := structpb.NewStruct(map[string]any{
		"history_id":   entry.ID,
		"product_id":   productID,
		"product_name": entry.ProductName,
		"product_sku":  entry.ProductSKU,
		"action":       string(entry.Action),
		"price":        entry.Price.StringFixed(domain.PriceDecimalPlaces),
		"start_date":   entry.StartDate.Format(domain.DateLayout),
		"end_date":     endDate,
		"change_date":  entry.ChangeDate.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	payload, err := proto.Marshal(event)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return payload, nil
}
