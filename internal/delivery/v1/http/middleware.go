package http

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger пишет по строке на запрос: метод, путь, статус, длительность.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Infof("%s %s -> %d (%s) [%s]",
				r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}

// rateLimit ограничивает число запросов с одного адреса в окне.
// При недоступности хранилища счётчиков запросы пропускаются.
func rateLimit(limiter usecase.RateLimiter, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warnf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Retry-After", retryAfter)
				respondError(log, w, r, e.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
