package http

import (
	"net/http"

	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

type PriceHandler struct {
	priceUsecase   usecase.PriceUC
	averageUsecase usecase.AveragePriceUC
	logger         logger.Logger
}

func NewPriceHandler(priceUsecase usecase.PriceUC, averageUsecase usecase.AveragePriceUC, logger logger.Logger) *PriceHandler {
	return &PriceHandler{
		priceUsecase:   priceUsecase,
		averageUsecase: averageUsecase,
		logger:         logger,
	}
}

// createOrReplace сохраняет цену продукта. Пересекающиеся цены удаляются, а не вызывают ошибку.
func (p *PriceHandler) createOrReplace(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	var body priceRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	price, err := p.priceUsecase.CreateOrReplacePrice(r.Context(), productID, req)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, newPriceResponse(price))
}

func (p *PriceHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	prices, err := p.priceUsecase.ListProductPrices(r.Context(), productID)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, mapSlice(prices, newPriceResponse))
}

func (p *PriceHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	var body priceRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	price, err := p.priceUsecase.UpdatePrice(r.Context(), id, req)
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newPriceResponse(price))
}

func (p *PriceHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	if err := p.priceUsecase.DeletePrice(r.Context(), id); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *PriceHandler) setCategoryPrice(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	var body categoryPriceRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, r, err)
		return
	}
	if body.Price == nil {
		respondError(p.logger, w, r, e.NewFieldError("price", e.ErrFieldRequired))
		return
	}

	req := &usecase.SetCategoryPriceReq{CategoryID: categoryID, Price: *body.Price}
	if err := p.priceUsecase.SetCategoryPrice(r.Context(), req); err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	p.logger.Infof("category %d prices set to %s", categoryID, body.Price.StringFixed(2))
	w.WriteHeader(http.StatusNoContent)
}

// average отдаёт среднюю цену категории; 204, если в диапазон не попало ни одной цены.
func (p *PriceHandler) average(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "id")
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	q := r.URL.Query()
	start, err := parseDateField("start_date", q.Get("start_date"))
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	end, err := parseDateField("end_date", q.Get("end_date"))
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	res, err := p.averageUsecase.GetAveragePrice(r.Context(), usecase.NewAveragePriceReq(categoryID, start, end, q.Get("period")))
	if err != nil {
		respondError(p.logger, w, r, err)
		return
	}

	if res.NoData {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	WriteSuccess(w, http.StatusOK, newAverageResponse(res.Average))
}
