package converter

import "time"

// ItemModel представляет запись таблицы items в PostgreSQL.
// Options и Images хранятся в JSONB.
type ItemModel struct {
	ID                    string     `db:"id"`
	SupplierID            string     `db:"supplier_id"`
	Title                 string     `db:"title"`
	Brand                 string     `db:"brand"`
	OriginalPrice         int64      `db:"original_price"`
	SalePrice             *int64     `db:"sale_price"`
	MarginRate            float64    `db:"margin_rate"`
	Options               []byte     `db:"options"`
	Images                []byte     `db:"images"`
	CategoryID            string     `db:"category_id"`
	Description           *string    `db:"description"`
	Manufacturer          *string    `db:"manufacturer"`
	Model                 *string    `db:"model"`
	EstimatedShippingDays int        `db:"estimated_shipping_days"`
	StockQuantity         int        `db:"stock_quantity"`
	MaxStockQuantity      *int       `db:"max_stock_quantity"`
	IsActive              bool       `db:"is_active"`
	NormalizedAt          time.Time  `db:"normalized_at"`
	LastSyncedAt          *time.Time `db:"last_synced_at"`
	HashKey               string     `db:"hash_key"`
}

// ItemOptionModel — элемент JSONB-массива items.options.
type ItemOptionModel struct {
	Name            string `json:"name"`
	Value           string `json:"value"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int    `json:"stock_quantity"`
}

// AccountModel представляет запись таблицы accounts в PostgreSQL.
type AccountModel struct {
	ID                 string     `db:"id"`
	AccountType        string     `db:"account_type"`
	AccountName        string     `db:"account_name"`
	SupplierID         string     `db:"supplier_id"`
	MarketType         string     `db:"market_type"`
	Username           string     `db:"username"`
	Password           string     `db:"password"`
	ApiCredentials     []byte     `db:"api_credentials"`
	TokenInfo          []byte     `db:"token_info"`
	Status             string     `db:"status"`
	IsActive           bool       `db:"is_active"`
	LastUsedAt         *time.Time `db:"last_used_at"`
	UsageCount         int64      `db:"usage_count"`
	TotalRequests      int64      `db:"total_requests"`
	SuccessfulRequests int64      `db:"successful_requests"`
	FailedRequests     int64      `db:"failed_requests"`
	DefaultMarginRate  float64    `db:"default_margin_rate"`
	SyncEnabled        bool       `db:"sync_enabled"`
	LastSyncAt         *time.Time `db:"last_sync_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type ApiCredentialsModel struct {
	ApiKey    string `json:"api_key,omitempty"`
	ApiSecret string `json:"api_secret,omitempty"`
	VendorID  string `json:"vendor_id,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

type TokenInfoModel struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken *string    `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	TokenType    string     `json:"token_type"`
}

// SyncHistoryModel представляет запись таблицы sync_history в PostgreSQL.
type SyncHistoryModel struct {
	ID              string     `db:"id"`
	SyncType        string     `db:"sync_type"`
	Status          string     `db:"status"`
	ItemID          *string    `db:"item_id"`
	SupplierID      *string    `db:"supplier_id"`
	MarketType      *string    `db:"market_type"`
	Result          []byte     `db:"result"`
	Details         []byte     `db:"details"`
	ErrorMessage    *string    `db:"error_message"`
	StartedAt       *time.Time `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	DurationSeconds *float64   `db:"duration_seconds"`
	RetryCount      int        `db:"retry_count"`
	MaxRetries      int        `db:"max_retries"`
	CreatedAt       time.Time  `db:"created_at"`
}

type SyncResultModel struct {
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	TotalCount   int               `json:"total_count"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID         string     `db:"id"`
	SupplierID string     `db:"supplier_id"`
	Name       string     `db:"name"`
	ParentID   *string    `db:"parent_id"`
	Level      int        `db:"level"`
	IsActive   bool       `db:"is_active"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
