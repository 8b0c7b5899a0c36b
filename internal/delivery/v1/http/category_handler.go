package http

import (
	"net/http"

	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/logger"
)

type CategoryHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCategoryHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{catalogUsecase: catalogUsecase, logger: logger}
}

func (c *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	last, err := c.catalogUsecase.CategoriesLastModified(r.Context())
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}
	if notModified(w, r, last) {
		return
	}

	categories, err := c.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, mapSlice(categories, newCategoryResponse))
}

func (c *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	category, err := c.catalogUsecase.CreateCategory(r.Context(), req.toUseCase())
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	c.logger.Infof("category %d %q created", category.ID, category.Name)
	WriteSuccess(w, http.StatusCreated, newCategoryResponse(category))
}

func (c *CategoryHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	category, err := c.catalogUsecase.GetCategory(r.Context(), id)
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}
	if notModified(w, r, &category.UpdatedAt) {
		return
	}

	WriteSuccess(w, http.StatusOK, newCategoryResponse(category))
}

func (c *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	category, err := c.catalogUsecase.UpdateCategory(r.Context(), id, req.toUseCase())
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newCategoryResponse(category))
}

func (c *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	if err := c.catalogUsecase.DeleteCategory(r.Context(), id); err != nil {
		respondError(c.logger, w, r, err)
		return
	}

	c.logger.Infof("category %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
