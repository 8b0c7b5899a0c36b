package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/price-backend/pkg/logger"
)

// Pinger — зависимость, доступность которой проверяет /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger logger.Logger
}

func NewHealthHandler(db Pinger, logger logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Errorf(err, "health check failed")
		WriteSuccess(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
