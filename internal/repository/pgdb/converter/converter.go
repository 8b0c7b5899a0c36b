package converter

import (
	"github.com/DRSN-tech/price-backend/internal/domain"
	"github.com/DRSN-tech/price-backend/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToModel(entity *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:        entity.ID,
		Name:      entity.Name,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (c CategoryConverter) ToArrEntity(models []CategoryModel) []domain.Category {
	res := make([]domain.Category, 0, len(models))
	for i := range models {
		res = append(res, *c.ToEntity(&models[i]))
	}

	return res
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		CategoryID:  entity.CategoryID,
		SKU:         entity.SKU,
		Description: entity.Description,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		CategoryID:  model.CategoryID,
		SKU:         model.SKU,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (p ProductConverter) ToArrEntity(models []ProductModel) []domain.Product {
	res := make([]domain.Product, 0, len(models))
	for i := range models {
		res = append(res, *p.ToEntity(&models[i]))
	}

	return res
}

// ProductPriceConverter преобразует сущности ProductPrice между domain и моделью PostgreSQL.
// Даты приводятся к календарным в UTC, как их хранит домен.
type ProductPriceConverter struct{}

func (ProductPriceConverter) ToModel(entity *domain.ProductPrice) *ProductPriceModel {
	return &ProductPriceModel{
		ID:        entity.ID,
		ProductID: entity.ProductID,
		StartDate: entity.StartDate,
		EndDate:   entity.EndDate,
		Price:     entity.Price,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (ProductPriceConverter) ToEntity(model *ProductPriceModel) *domain.ProductPrice {
	entity := domain.NewProductPrice(model.ProductID, model.StartDate, model.EndDate, model.Price)
	entity.ID = model.ID
	entity.CreatedAt = model.CreatedAt
	entity.UpdatedAt = model.UpdatedAt

	return entity
}

func (p ProductPriceConverter) ToArrEntity(models []ProductPriceModel) []domain.ProductPrice {
	res := make([]domain.ProductPrice, 0, len(models))
	for i := range models {
		res = append(res, *p.ToEntity(&models[i]))
	}

	return res
}

// PriceHistoryConverter преобразует записи журнала цен между domain и моделью PostgreSQL.
type PriceHistoryConverter struct{}

func (PriceHistoryConverter) ToModel(entity *domain.PriceHistory) *PriceHistoryModel {
	return &PriceHistoryModel{
		ID:          entity.ID,
		ProductName: entity.ProductName,
		ProductSKU:  entity.ProductSKU,
		StartDate:   entity.StartDate,
		EndDate:     entity.EndDate,
		Price:       entity.Price,
		Action:      string(entity.Action),
		ChangeDate:  entity.ChangeDate,
	}
}

func (PriceHistoryConverter) ToEntity(model *PriceHistoryModel) *domain.PriceHistory {
	h := &domain.PriceHistory{
		ID:          model.ID,
		ProductName: model.ProductName,
		ProductSKU:  model.ProductSKU,
		StartDate:   domain.Date(model.StartDate),
		Price:       model.Price,
		Action:      domain.PriceAction(model.Action),
		ChangeDate:  model.ChangeDate,
	}
	if model.EndDate != nil {
		end := domain.Date(*model.EndDate)
		h.EndDate = &end
	}

	return h
}

func (p PriceHistoryConverter) ToArrEntity(models []PriceHistoryModel) []domain.PriceHistory {
	res := make([]domain.PriceHistory, 0, len(models))
	for i := range models {
		res = append(res, *p.ToEntity(&models[i]))
	}

	return res
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (o OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, o.ToEntity(m))
	}

	return res
}
