package http

import (
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

// REQUESTS

type IngestRequest struct {
	SupplierID     string   `json:"supplier_id"`
	AccountID      string   `json:"account_id"`
	ItemKeys       []string `json:"item_keys,omitempty"`
	MaxConcurrency int      `json:"max_concurrency,omitempty"`
}

func (r *IngestRequest) toUseCase() (*usecase.IngestReq, error) {
	if r.SupplierID == "" || r.AccountID == "" {
		return nil, e.Wrap("supplier_id and account_id are required", e.ErrMissingFields)
	}

	return &usecase.IngestReq{
		SupplierID:     r.SupplierID,
		AccountID:      r.AccountID,
		ItemKeys:       r.ItemKeys,
		MaxConcurrency: r.MaxConcurrency,
	}, nil
}

type CategoriesRequest struct {
	SupplierID string `json:"supplier_id"`
	AccountID  string `json:"account_id"`
}

type NormalizeRequest struct {
	SupplierID string   `json:"supplier_id"`
	ItemIDs    []string `json:"item_ids,omitempty"`
	BatchSize  int      `json:"batch_size,omitempty"`
}

func (r *NormalizeRequest) toUseCase() (*usecase.NormalizeReq, error) {
	if r.SupplierID == "" && len(r.ItemIDs) == 0 {
		return nil, e.Wrap("supplier_id or item_ids is required", e.ErrMissingFields)
	}

	return &usecase.NormalizeReq{
		SupplierID: r.SupplierID,
		ItemIDs:    r.ItemIDs,
		BatchSize:  r.BatchSize,
	}, nil
}

type PublishRequest struct {
	MarketType  string   `json:"market_type"`
	AccountName string   `json:"account_name"`
	ItemIDs     []string `json:"item_ids"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

func (r *PublishRequest) toUseCase() (*usecase.PublishReq, error) {
	if r.MarketType == "" || r.AccountName == "" {
		return nil, e.Wrap("market_type and account_name are required", e.ErrMissingFields)
	}

	return &usecase.PublishReq{
		MarketType:  r.MarketType,
		AccountName: r.AccountName,
		ItemIDs:     r.ItemIDs,
		DryRun:      r.DryRun,
	}, nil
}

type MarketUpdateRequest struct {
	MarketType     string                `json:"market_type"`
	AccountName    string                `json:"account_name"`
	Kind           string                `json:"kind" enums:"price,stock"`
	Targets        []MarketTargetRequest `json:"targets"`
	MaxConcurrency int                   `json:"max_concurrency,omitempty"`
}

type MarketTargetRequest struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
}

func (r *MarketUpdateRequest) toUseCase() (*usecase.MarketUpdateReq, error) {
	if r.MarketType == "" || r.AccountName == "" {
		return nil, e.Wrap("market_type and account_name are required", e.ErrMissingFields)
	}

	kind := usecase.MarketUpdateKind(r.Kind)
	if kind != usecase.MarketUpdatePrice && kind != usecase.MarketUpdateStock {
		return nil, e.Wrap(r.Kind, e.ErrUnknownUpdateKind)
	}

	targets := make([]usecase.MarketTarget, 0, len(r.Targets))
	for _, t := range r.Targets {
		targets = append(targets, usecase.MarketTarget(t))
	}

	return &usecase.MarketUpdateReq{
		MarketType:     r.MarketType,
		AccountName:    r.AccountName,
		Kind:           kind,
		Targets:        targets,
		MaxConcurrency: r.MaxConcurrency,
	}, nil
}

type CollectOrdersRequest struct {
	SupplierID     string                 `json:"supplier_id"`
	AccountID      string                 `json:"account_id"`
	Orders         []ExternalOrderRequest `json:"orders"`
	MaxConcurrency int                    `json:"max_concurrency,omitempty"`
}

type ExternalOrderRequest struct {
	ExternalOrderID string                     `json:"external_order_id"`
	CustomerName    string                     `json:"customer_name"`
	CustomerPhone   string                     `json:"customer_phone"`
	CustomerNote    string                     `json:"customer_note,omitempty"`
	OrderMemo       string                     `json:"order_memo,omitempty"`
	SellerName      string                     `json:"seller_name,omitempty"`
	SellerPhone     string                     `json:"seller_phone,omitempty"`
	SellerEmail     string                     `json:"seller_email,omitempty"`
	Address1        string                     `json:"address1"`
	Address2        string                     `json:"address2,omitempty"`
	PostalCode      string                     `json:"postal_code"`
	Items           []ExternalOrderItemRequest `json:"items"`
}

type ExternalOrderItemRequest struct {
	ProductID   string                    `json:"product_id"`
	ProductName string                    `json:"product_name"`
	Quantity    int                       `json:"quantity"`
	UnitPrice   int64                     `json:"unit_price"`
	Options     []usecase.OptionAttribute `json:"options,omitempty"`
}

func (r *CollectOrdersRequest) toUseCase() (*usecase.CollectOrdersReq, error) {
	if r.SupplierID == "" || r.AccountID == "" {
		return nil, e.Wrap("supplier_id and account_id are required", e.ErrMissingFields)
	}

	orders := make([]usecase.ExternalOrder, 0, len(r.Orders))
	for _, o := range r.Orders {
		items := make([]usecase.ExternalOrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, usecase.ExternalOrderItem(it))
		}

		orders = append(orders, usecase.ExternalOrder{
			ExternalOrderID: o.ExternalOrderID,
			CustomerName:    o.CustomerName,
			CustomerPhone:   o.CustomerPhone,
			CustomerNote:    o.CustomerNote,
			OrderMemo:       o.OrderMemo,
			SellerName:      o.SellerName,
			SellerPhone:     o.SellerPhone,
			SellerEmail:     o.SellerEmail,
			ShippingAddress: domain.ShippingAddress{
				Address1:   o.Address1,
				Address2:   o.Address2,
				PostalCode: o.PostalCode,
			},
			Items: items,
		})
	}

	return &usecase.CollectOrdersReq{
		SupplierID:     r.SupplierID,
		AccountID:      r.AccountID,
		ExternalOrders: orders,
		MaxConcurrency: r.MaxConcurrency,
	}, nil
}

// RESPONSES

// StageResponse — итог запуска этапа конвейера.
type StageResponse[T any] struct {
	HistoryID    string            `json:"history_id,omitempty"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	TotalCount   int               `json:"total_count"`
	Errors       map[string]string `json:"errors,omitempty"`
	Message      string            `json:"message,omitempty"`
	Items        []T               `json:"items"`
}

func newStageResponse[S, T any](res *usecase.StageResult[S], err error, mapItem func(S) T) *StageResponse[T] {
	resp := &StageResponse[T]{Items: []T{}}
	if err != nil {
		resp.Message = err.Error()
	}
	if res == nil {
		return resp
	}

	resp.HistoryID = res.HistoryID
	if res.Result != nil {
		resp.SuccessCount = res.Result.SuccessCount
		resp.FailureCount = res.Result.FailureCount
		resp.TotalCount = res.Result.TotalCount
		resp.Errors = res.Result.Errors
	}
	for _, item := range res.Items {
		resp.Items = append(resp.Items, mapItem(item))
	}

	return resp
}

type ItemResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Brand      string `json:"brand"`
	FinalPrice int64  `json:"final_price"`
	CategoryID string `json:"category_id"`
	SupplierID string `json:"supplier_id"`
	HashKey    string `json:"hash_key"`
	IsActive   bool   `json:"is_active"`
}

func toItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:         item.ID,
		Title:      item.Title,
		Brand:      item.Brand,
		FinalPrice: item.Price.FinalPrice(),
		CategoryID: item.CategoryID,
		SupplierID: item.SupplierID,
		HashKey:    item.HashKey,
		IsActive:   item.IsActive,
	}
}

type UploadResponse struct {
	ItemID           string  `json:"item_id"`
	Success          bool    `json:"success"`
	DryRun           bool    `json:"dry_run,omitempty"`
	ProductID        *string `json:"product_id,omitempty"`
	ChannelProductNo *string `json:"channel_product_no,omitempty"`
	Message          string  `json:"message,omitempty"`
}

func toUploadResponse(o usecase.UploadOutcome) UploadResponse {
	return UploadResponse(o)
}

type MarketUpdateResponse struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Value     int64  `json:"value"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

func toMarketUpdateResponse(o usecase.MarketUpdateOutcome) MarketUpdateResponse {
	return MarketUpdateResponse(o)
}

type OrderResponse struct {
	ExternalOrderID string             `json:"external_order_id"`
	OrderID         string             `json:"order_id"`
	TotalAmount     int64              `json:"total_amount"`
	SupplierOrders  []usecase.OrderRef `json:"supplier_orders"`
	CreatedAt       time.Time          `json:"created_at"`
}

func toOrderResponse(o usecase.CollectedOrder) OrderResponse {
	resp := OrderResponse{
		ExternalOrderID: o.ExternalOrderID,
		SupplierOrders:  o.SupplierOrders,
		CreatedAt:       o.CreatedAt,
	}
	if o.Order != nil {
		resp.OrderID = o.Order.ID
		resp.TotalAmount = o.Order.TotalAmount
	}

	return resp
}

type CategoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	Level    int     `json:"level"`
}

type HistoryResponse struct {
	ID              string            `json:"id"`
	SyncType        string            `json:"sync_type"`
	Status          string            `json:"status"`
	ItemID          *string           `json:"item_id,omitempty"`
	SupplierID      *string           `json:"supplier_id,omitempty"`
	MarketType      *string           `json:"market_type,omitempty"`
	SuccessCount    int               `json:"success_count"`
	FailureCount    int               `json:"failure_count"`
	TotalCount      int               `json:"total_count"`
	Errors          map[string]string `json:"errors,omitempty"`
	Details         map[string]any    `json:"details,omitempty"`
	ErrorMessage    *string           `json:"error_message,omitempty"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	DurationSeconds *float64          `json:"duration_seconds,omitempty"`
	RetryCount      int               `json:"retry_count"`
	MaxRetries      int               `json:"max_retries"`
	CreatedAt       time.Time         `json:"created_at"`
}

func toHistoryResponse(h *domain.SyncHistory) HistoryResponse {
	resp := HistoryResponse{
		ID:              h.ID,
		SyncType:        string(h.SyncType),
		Status:          string(h.Status),
		ItemID:          h.ItemID,
		SupplierID:      h.SupplierID,
		MarketType:      h.MarketType,
		Details:         h.Details,
		ErrorMessage:    h.ErrorMessage,
		StartedAt:       h.StartedAt,
		CompletedAt:     h.CompletedAt,
		DurationSeconds: h.DurationSeconds,
		RetryCount:      h.RetryCount,
		MaxRetries:      h.MaxRetries,
		CreatedAt:       h.CreatedAt,
	}
	if h.Result != nil {
		resp.SuccessCount = h.Result.SuccessCount
		resp.FailureCount = h.Result.FailureCount
		resp.TotalCount = h.Result.TotalCount
		resp.Errors = h.Result.Errors
	}

	return resp
}
