package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// list возвращает продукты; ?category=<id> ограничивает выборку одной категорией.
func (p *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	var filter usecase.ProductFilter
	if v := r.URL.Query().Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(p.logger, w, r, e.NewFieldError("category", e.ErrInvalidID))
			return
		}
		filter.CategoryID = &id
	}

	last, err := p.catalogUsecase.ProductsLastModified(r.Context())
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}
	if notModified(w, r, last) {
		return
	}

	products, err := p.catalogUsecase.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, mapSlice(products, newProductResponse))
}

func (p *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var body productRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	product, err := p.catalogUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	p.logger.Infof("product %d %s created", product.ID, product.SKU)
	WriteSuccess(w, http.StatusCreated, newProductResponse(product))
}

func (p *ProductHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	product, err := p.catalogUsecase.GetProduct(r.Context(), id)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}
	if notModified(w, r, &product.UpdatedAt) {
		return
	}

	WriteSuccess(w, http.StatusOK, newProductResponse(product))
}

func (p *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	var body productRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	product, err := p.catalogUsecase.UpdateProduct(r.Context(), id, req)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newProductResponse(product))
}

// delete удаляет продукт вместе с ценами; записи журнала цен остаются.
func (p *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	if err := p.catalogUsecase.DeleteProduct(r.Context(), id); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	p.logger.Infof("product %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
