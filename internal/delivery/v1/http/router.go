package http

import (
	"github.com/DRSN-tech/price-backend/internal/cfg"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// UseCases — зависимости HTTP-слоя.
type UseCases struct {
	Catalog usecase.CatalogUC
	Price   usecase.PriceUC
	Average usecase.AveragePriceUC
	History usecase.HistoryUC
}

func (r *Router) Init(uc UseCases, limiter usecase.RateLimiter, rateCfg *cfg.RateLimitCfg, db Pinger) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(requestLogger(r.logger))
	r.router.Use(middleware.Recoverer)

	r.router.Get("/healthz", NewHealthHandler(db, r.logger).health)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(rateLimit(limiter, rateCfg.Window, r.logger))

		priceHandler := NewPriceHandler(uc.Price, uc.Average, r.logger)
		registerCategoryRoutes(v1, NewCategoryHandler(uc.Catalog, r.logger), priceHandler)
		registerProductRoutes(v1, NewProductHandler(uc.Catalog, r.logger), priceHandler)
		registerPriceRoutes(v1, priceHandler)
		registerHistoryRoutes(v1, NewHistoryHandler(uc.History, r.logger))
	})
}

func registerCategoryRoutes(router chi.Router, h *CategoryHandler, ph *PriceHandler) {
	router.Route("/categories", func(c chi.Router) {
		c.Get("/", h.list)
		c.Post("/", h.create)
		c.Get("/{id}", h.retrieve)
		c.Put("/{id}", h.update)
		c.Delete("/{id}", h.delete)
		c.Put("/{id}/price", ph.setCategoryPrice)
		c.Get("/{id}/price/average", ph.average)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler, ph *PriceHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.list)
		pr.Post("/", h.create)
		pr.Get("/{id}", h.retrieve)
		pr.Put("/{id}", h.update)
		pr.Delete("/{id}", h.delete)
		pr.Post("/{id}/price", ph.createOrReplace)
		pr.Get("/{id}/prices", ph.listByProduct)
	})
}

func registerPriceRoutes(router chi.Router, h *PriceHandler) {
	router.Route("/prices", func(p chi.Router) {
		p.Put("/{id}", h.update)
		p.Delete("/{id}", h.delete)
	})
}

func registerHistoryRoutes(router chi.Router, h *HistoryHandler) {
	router.Get("/price-history", h.list)
}
