package converter

import "time"

// ItemRedisModel — закэшированное представление товара.
type ItemRedisModel struct {
	ID                    string                 `json:"id"`
	Title                 string                 `json:"title"`
	Brand                 string                 `json:"brand"`
	OriginalPrice         int64                  `json:"original_price"`
	SalePrice             *int64                 `json:"sale_price,omitempty"`
	MarginRate            float64                `json:"margin_rate"`
	Options               []ItemOptionRedisModel `json:"options,omitempty"`
	Images                []string               `json:"images,omitempty"`
	CategoryID            string                 `json:"category_id"`
	SupplierID            string                 `json:"supplier_id"`
	Description           *string                `json:"description,omitempty"`
	Manufacturer          *string                `json:"manufacturer,omitempty"`
	Model                 *string                `json:"model,omitempty"`
	EstimatedShippingDays int                    `json:"estimated_shipping_days"`
	StockQuantity         int                    `json:"stock_quantity"`
	MaxStockQuantity      *int                   `json:"max_stock_quantity,omitempty"`
	IsActive              bool                   `json:"is_active"`
	NormalizedAt          time.Time              `json:"normalized_at"`
	LastSyncedAt          *time.Time             `json:"last_synced_at,omitempty"`
	HashKey               string                 `json:"hash_key"`
}

type ItemOptionRedisModel struct {
	Name            string `json:"name"`
	Value           string `json:"value"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int    `json:"stock_quantity"`
}
