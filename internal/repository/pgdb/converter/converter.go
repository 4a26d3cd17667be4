package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
)

// ItemConverter преобразует товары между domain и моделью PostgreSQL.
type ItemConverter interface {
	ToModel(entity *domain.Item) (*ItemModel, error)
	ToEntity(model *ItemModel) (*domain.Item, error)
}

// AccountConverter преобразует учётные записи между domain и моделью PostgreSQL.
type AccountConverter interface {
	ToModel(entity *domain.Account) (*AccountModel, error)
	ToEntity(model *AccountModel) (*domain.Account, error)
}

// SyncHistoryConverter преобразует записи журнала между domain и моделью PostgreSQL.
type SyncHistoryConverter interface {
	ToModel(entity *domain.SyncHistory) (*SyncHistoryModel, error)
	ToEntity(model *SyncHistoryModel) (*domain.SyncHistory, error)
}

// CategoryConverter преобразует категории между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToModel(entity *domain.Category) *CategoryModel
	ToEntity(model *CategoryModel) *domain.Category
}

// OutboxEventConverter преобразует события OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

// ITEMS

type ItemConverterImpl struct{}

func (ItemConverterImpl) ToModel(entity *domain.Item) (*ItemModel, error) {
	options := make([]ItemOptionModel, 0, len(entity.Options))
	for _, o := range entity.Options {
		options = append(options, ItemOptionModel(o))
	}

	rawOptions, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	images := entity.Images
	if images == nil {
		images = []string{}
	}
	rawImages, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	return &ItemModel{
		ID:                    entity.ID,
		SupplierID:            entity.SupplierID,
		Title:                 entity.Title,
		Brand:                 entity.Brand,
		OriginalPrice:         entity.Price.OriginalPrice,
		SalePrice:             entity.Price.SalePrice,
		MarginRate:            entity.Price.MarginRate,
		Options:               rawOptions,
		Images:                rawImages,
		CategoryID:            entity.CategoryID,
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
	}, nil
}

// ToEntity восстанавливает товар как есть, хэш не пересчитывается.
func (ItemConverterImpl) ToEntity(model *ItemModel) (*domain.Item, error) {
	var options []ItemOptionModel
	if len(model.Options) > 0 {
		if err := json.Unmarshal(model.Options, &options); err != nil {
			return nil, err
		}
	}

	var images []string
	if len(model.Images) > 0 {
		if err := json.Unmarshal(model.Images, &images); err != nil {
			return nil, err
		}
	}

	item := &domain.Item{
		ID:                    model.ID,
		Title:                 model.Title,
		Brand:                 model.Brand,
		Price:                 domain.NewPricePolicy(model.OriginalPrice, model.SalePrice, model.MarginRate),
		Images:                images,
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
	for _, o := range options {
		item.Options = append(item.Options, domain.ItemOption(o))
	}

	return item, nil
}

// ACCOUNTS

type AccountConverterImpl struct{}

func (AccountConverterImpl) ToModel(entity *domain.Account) (*AccountModel, error) {
	model := &AccountModel{
		ID:                 entity.ID,
		AccountType:        string(entity.AccountType),
		AccountName:        entity.AccountName,
		SupplierID:         entity.SupplierID,
		MarketType:         entity.MarketType,
		Username:           entity.Username,
		Password:           entity.Password,
		Status:             string(entity.Status),
		IsActive:           entity.IsActive,
		LastUsedAt:         entity.LastUsedAt,
		UsageCount:         entity.UsageCount,
		TotalRequests:      entity.TotalRequests,
		SuccessfulRequests: entity.SuccessfulRequests,
		FailedRequests:     entity.FailedRequests,
		DefaultMarginRate:  entity.DefaultMarginRate,
		SyncEnabled:        entity.SyncEnabled,
		LastSyncAt:         entity.LastSyncAt,
		CreatedAt:          entity.CreatedAt,
		UpdatedAt:          entity.UpdatedAt,
	}

	if entity.ApiCredentials != nil {
		raw, err := json.Marshal(ApiCredentialsModel(*entity.ApiCredentials))
		if err != nil {
			return nil, err
		}
		model.ApiCredentials = raw
	}

	if entity.TokenInfo != nil {
		raw, err := json.Marshal(TokenInfoModel(*entity.TokenInfo))
		if err != nil {
			return nil, err
		}
		model.TokenInfo = raw
	}

	return model, nil
}

func (AccountConverterImpl) ToEntity(model *AccountModel) (*domain.Account, error) {
	account := &domain.Account{
		ID:                 model.ID,
		AccountType:        domain.AccountType(model.AccountType),
		AccountName:        model.AccountName,
		SupplierID:         model.SupplierID,
		MarketType:         model.MarketType,
		Username:           model.Username,
		Password:           model.Password,
		Status:             domain.AccountStatus(model.Status),
		IsActive:           model.IsActive,
		LastUsedAt:         model.LastUsedAt,
		UsageCount:         model.UsageCount,
		TotalRequests:      model.TotalRequests,
		SuccessfulRequests: model.SuccessfulRequests,
		FailedRequests:     model.FailedRequests,
		DefaultMarginRate:  model.DefaultMarginRate,
		SyncEnabled:        model.SyncEnabled,
		LastSyncAt:         model.LastSyncAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}

	if len(model.ApiCredentials) > 0 {
		var creds ApiCredentialsModel
		if err := json.Unmarshal(model.ApiCredentials, &creds); err != nil {
			return nil, err
		}
		c := domain.ApiCredentials(creds)
		account.ApiCredentials = &c
	}

	if len(model.TokenInfo) > 0 {
		var token TokenInfoModel
		if err := json.Unmarshal(model.TokenInfo, &token); err != nil {
			return nil, err
		}
		t := domain.TokenInfo(token)
		account.TokenInfo = &t
	}

	return account, nil
}

// HISTORY

type SyncHistoryConverterImpl struct{}

func (SyncHistoryConverterImpl) ToModel(entity *domain.SyncHistory) (*SyncHistoryModel, error) {
	details := entity.Details
	if details == nil {
		details = map[string]any{}
	}
	rawDetails, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	model := &SyncHistoryModel{
		ID:              entity.ID,
		SyncType:        string(entity.SyncType),
		Status:          string(entity.Status),
		ItemID:          entity.ItemID,
		SupplierID:      entity.SupplierID,
		MarketType:      entity.MarketType,
		Details:         rawDetails,
		ErrorMessage:    entity.ErrorMessage,
		StartedAt:       entity.StartedAt,
		CompletedAt:     entity.CompletedAt,
		DurationSeconds: entity.DurationSeconds,
		RetryCount:      entity.RetryCount,
		MaxRetries:      entity.MaxRetries,
		CreatedAt:       entity.CreatedAt,
	}

	if entity.Result != nil {
		raw, err := json.Marshal(SyncResultModel(*entity.Result))
		if err != nil {
			return nil, err
		}
		model.Result = raw
	}

	return model, nil
}

func (SyncHistoryConverterImpl) ToEntity(model *SyncHistoryModel) (*domain.SyncHistory, error) {
	history := &domain.SyncHistory{
		ID:              model.ID,
		SyncType:        domain.SyncType(model.SyncType),
		Status:          domain.SyncStatus(model.Status),
		ItemID:          model.ItemID,
		SupplierID:      model.SupplierID,
		MarketType:      model.MarketType,
		Details:         map[string]any{},
		ErrorMessage:    model.ErrorMessage,
		StartedAt:       model.StartedAt,
		CompletedAt:     model.CompletedAt,
		DurationSeconds: model.DurationSeconds,
		RetryCount:      model.RetryCount,
		MaxRetries:      model.MaxRetries,
		CreatedAt:       model.CreatedAt,
	}

	if len(model.Details) > 0 {
		if err := json.Unmarshal(model.Details, &history.Details); err != nil {
			return nil, err
		}
	}

	if len(model.Result) > 0 {
		var result SyncResultModel
		if err := json.Unmarshal(model.Result, &result); err != nil {
			return nil, err
		}
		r := domain.SyncResult(result)
		if r.Errors == nil {
			r.Errors = map[string]string{}
		}
		history.Result = &r
	}

	return history, nil
}

// CATEGORIES

type CategoryConverterImpl struct{}

func (CategoryConverterImpl) ToModel(entity *domain.Category) *CategoryModel {
	m := CategoryModel(*entity)
	return &m
}

func (CategoryConverterImpl) ToEntity(model *CategoryModel) *domain.Category {
	c := domain.Category(*model)
	return &c
}

// OUTBOX

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}
