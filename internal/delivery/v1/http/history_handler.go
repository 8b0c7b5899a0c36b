package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// HistoryHandler отдаёт журнал цен только на чтение.
type HistoryHandler struct {
	historyUsecase usecase.HistoryUC
	logger         logger.Logger
}

func NewHistoryHandler(historyUsecase usecase.HistoryUC, logger logger.Logger) *HistoryHandler {
	return &HistoryHandler{historyUsecase: historyUsecase, logger: logger}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	entries, err := h.historyUsecase.ListHistory(r.Context(), filter)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, mapSlice(entries, newHistoryResponse))
}

func parseHistoryFilter(r *http.Request) (usecase.PriceHistoryFilter, error) {
	q := r.URL.Query()
	filter := usecase.PriceHistoryFilter{Search: strings.TrimSpace(q.Get("search"))}

	if v := q.Get("action"); v != "" {
		action, err := domain.ParsePriceAction(v)
		if err != nil {
			return filter, err
		}
		filter.Action = &action
	}

	var err error
	from, to := q.Get("from"), q.Get("to")
	if filter.From, err = parseOptionalDateField("from", &from); err != nil {
		return filter, err
	}
	if filter.To, err = parseOptionalDateField("to", &to); err != nil {
		return filter, err
	}

	if filter.Limit, err = parseIntQuery(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseIntQuery(r, "offset"); err != nil {
		return filter, err
	}

	return filter, nil
}
