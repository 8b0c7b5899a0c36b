package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const validationMessage = "validation error"

type ErrorResponse struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var badRequestErrs = []error{
	e.ErrStatusBadRequest,
	e.ErrInvalidJSON,
	e.ErrFieldRequired,
	e.ErrFieldTooLong,
	e.ErrInvalidID,
	e.ErrInvalidDate,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrPriceMustBePositive,
	e.ErrEndDateBeforeStartDate,
	e.ErrInvalidDateRange,
	e.ErrInvalidPeriod,
	e.ErrInvalidAction,
	e.ErrDuplicatePriceWindow,
	e.ErrCategoryNameTaken,
	e.ErrProductSKUTaken,
	e.ErrProductNameTaken,
}

var notFoundErrs = []error{
	e.ErrCategoryNotFound,
	e.ErrProductNotFound,
	e.ErrPriceNotFound,
}

// ToHTTPResponse сопоставляет ошибку статусу и безопасному для клиента сообщению.
func ToHTTPResponse(err error) (int, string) {
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error()
		}
	}

	if errors.Is(err, e.ErrTooManyRequests) {
		return http.StatusTooManyRequests, e.ErrTooManyRequests.Error()
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

// WriteError пишет ошибку в формате ErrorResponse.
// Ошибка, привязанная к полю, всегда отдаётся как 400 с деталями в errors.
func WriteError(w http.ResponseWriter, err error) {
	if fe, ok := e.AsFieldError(err); ok {
		_, msg := ToHTTPResponse(fe.Err)
		if msg == e.ErrInternalServerError.Error() {
			msg = fe.Err.Error()
		}

		resp := NewErrorResponse(http.StatusBadRequest, validationMessage)
		resp.Errors = map[string][]string{fe.Field: {msg}}
		WriteSuccess(w, http.StatusBadRequest, resp)
		return
	}

	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError логирует ошибку с уровнем по статусу и отвечает клиенту.
func respondError(log logger.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if _, ok := e.AsFieldError(err); ok {
		code = http.StatusBadRequest
	}

	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%d %s %s", code, r.Method, r.URL.Path)
	} else {
		log.Warnf("%d %s %s: %s", code, r.Method, r.URL.Path, err.Error())
	}

	WriteError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrInvalidJSON, err))
	}

	return nil
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.NewFieldError(param, e.ErrInvalidID)
	}

	return id, nil
}

// parseDateField разбирает обязательную дату из запроса.
func parseDateField(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, e.NewFieldError(field, e.ErrFieldRequired)
	}

	t, err := domain.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, e.NewFieldError(field, err)
	}

	return t, nil
}

// parseOptionalDateField разбирает необязательную дату; пустое значение — nil.
func parseOptionalDateField(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	t, err := parseDateField(field, *value)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func parseIntQuery(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, e.NewFieldError(key, e.ErrStatusBadRequest)
	}

	return n, nil
}

// notModified выставляет Last-Modified и отвечает 304, если клиент уже видел эту версию.
// Для пустой таблицы (lastModified == nil) отметкой служит текущее время.
func notModified(w http.ResponseWriter, r *http.Request, lastModified *time.Time) bool {
	last := time.Now()
	if lastModified != nil {
		last = *lastModified
	}
	last = last.UTC().Truncate(time.Second)
	w.Header().Set("Last-Modified", last.Format(http.TimeFormat))

	since := r.Header.Get("If-Modified-Since")
	if since == "" {
		return false
	}

	t, err := http.ParseTime(since)
	if err != nil || last.After(t) {
		return false
	}

	w.WriteHeader(http.StatusNotModified)
	return true
}
