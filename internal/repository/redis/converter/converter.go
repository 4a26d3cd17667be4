package converter

import "github.com/DRSN-tech/dropship-sync/internal/domain"

// ItemConverter преобразует товары между domain и моделью кэша.
type ItemConverter interface {
	ToRedisModel(entity *domain.Item) *ItemRedisModel
	ToEntity(model *ItemRedisModel) *domain.Item
}

type ItemConverterImpl struct{}

func (ItemConverterImpl) ToRedisModel(entity *domain.Item) *ItemRedisModel {
	model := &ItemRedisModel{
		ID:                    entity.ID,
		Title:                 entity.Title,
		Brand:                 entity.Brand,
		OriginalPrice:         entity.Price.OriginalPrice,
		SalePrice:             entity.Price.SalePrice,
		MarginRate:            entity.Price.MarginRate,
		Images:                entity.Images,
		CategoryID:            entity.CategoryID,
		SupplierID:            entity.SupplierID,
		Description:           entity.Description,
		Manufacturer:          entity.Manufacturer,
		Model:                 entity.Model,
		EstimatedShippingDays: entity.EstimatedShippingDays,
		StockQuantity:         entity.StockQuantity,
		MaxStockQuantity:      entity.MaxStockQuantity,
		IsActive:              entity.IsActive,
		NormalizedAt:          entity.NormalizedAt,
		LastSyncedAt:          entity.LastSyncedAt,
		HashKey:               entity.HashKey,
	}
	for _, o := range entity.Options {
		model.Options = append(model.Options, ItemOptionRedisModel(o))
	}

	return model
}

func (ItemConverterImpl) ToEntity(model *ItemRedisModel) *domain.Item {
	item := &domain.Item{
		ID:                    model.ID,
		Title:                 model.Title,
		Brand:                 model.Brand,
		Price:                 domain.NewPricePolicy(model.OriginalPrice, model.SalePrice, model.MarginRate),
		Images:                model.Images,
		CategoryID:            model.CategoryID,
		SupplierID:            model.SupplierID,
		Description:           model.Description,
		Manufacturer:          model.Manufacturer,
		Model:                 model.Model,
		EstimatedShippingDays: model.EstimatedShippingDays,
		StockQuantity:         model.StockQuantity,
		MaxStockQuantity:      model.MaxStockQuantity,
		IsActive:              model.IsActive,
		NormalizedAt:          model.NormalizedAt,
		LastSyncedAt:          model.LastSyncedAt,
		HashKey:               model.HashKey,
	}
	for _, o := range model.Options {
		item.Options = append(item.Options, domain.ItemOption(o))
	}

	return item
}
