package usecase

import (
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// STAGE REQUESTS

// IngestReq — запуск сбора товаров у поставщика.
type IngestReq struct {
	SupplierID     string
	AccountID      string
	ItemKeys       []string // пусто: все товары учётной записи
	MaxConcurrency int
}

// NormalizeReq — запуск нормализации. Если ItemIDs пуст, обрабатываются все товары SupplierID.
type NormalizeReq struct {
	SupplierID string
	ItemIDs    []string
	BatchSize  int
}

// PublishReq — запуск выгрузки товаров на маркетплейс.
type PublishReq struct {
	MarketType  string
	ItemIDs     []string
	AccountName string
	DryRun      bool
}

// MarketUpdateKind — что отправляется на маркетплейс для уже выгруженных товаров.
type MarketUpdateKind string

const (
	MarketUpdatePrice MarketUpdateKind = "price"
	MarketUpdateStock MarketUpdateKind = "stock"
)

// MarketUpdateReq — отправка текущих цен или остатков товаров, уже выгруженных на маркетплейс.
type MarketUpdateReq struct {
	MarketType     string
	AccountName    string
	Kind           MarketUpdateKind
	Targets        []MarketTarget
	MaxConcurrency int
}

// MarketTarget связывает канонический товар с его карточкой на маркетплейсе.
type MarketTarget struct {
	ItemID    string
	ProductID string
}

// CollectOrdersReq — передача внешних заказов поставщику.
type CollectOrdersReq struct {
	SupplierID     string
	AccountID      string
	ExternalOrders []ExternalOrder
	MaxConcurrency int
}

// StageResult — итог запуска этапа. Items содержит только успешно обработанные единицы
// в порядке входных данных.
type StageResult[T any] struct {
	HistoryID string
	Items     []T
	Result    *domain.SyncResult
}

func NewStageResult[T any](historyID string, items []T, result *domain.SyncResult) *StageResult[T] {
	if items == nil {
		items = []T{}
	}

	return &StageResult[T]{
		HistoryID: historyID,
		Items:     items,
		Result:    result,
	}
}

// SUPPLIER

// SupplierCredentials — данные для входа в API поставщика.
type SupplierCredentials struct {
	SupplierID string
	AccountID  string
	Username   string
	Password   string
	ApiKey     string
	ApiSecret  string
}

// RawItem — товар в том виде, в котором его вернул поставщик.
type RawItem struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	Brand                 string      `json:"brand"`
	Price                 RawPrice    `json:"price"`
	Options               []RawOption `json:"options"`
	Images                []string    `json:"images"`
	Category              string      `json:"category"`
	Description           *string     `json:"description,omitempty"`
	Manufacturer          *string     `json:"manufacturer,omitempty"`
	Model                 *string     `json:"model,omitempty"`
	SupplierID            string      `json:"supplier_id"`
	EstimatedShippingDays *int        `json:"estimated_shipping_days,omitempty"`
	StockQuantity         *int        `json:"stock_quantity,omitempty"`
	FetchedAt             time.Time   `json:"fetched_at"`
}

type RawPrice struct {
	Original   int64    `json:"original"`
	Sale       *int64   `json:"sale,omitempty"`
	MarginRate *float64 `json:"margin_rate,omitempty"`
}

type RawOption struct {
	Name            string `json:"name"`
	Value           string `json:"value"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int    `json:"stock_quantity"`
}

// ExternalOrder — заказ, поступивший с внешней торговой площадки.
type ExternalOrder struct {
	ExternalOrderID string
	CustomerName    string
	CustomerPhone   string
	CustomerNote    string
	OrderMemo       string
	SellerName      string
	SellerPhone     string
	SellerEmail     string
	ShippingAddress domain.ShippingAddress
	Items           []ExternalOrderItem
}

type ExternalOrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   int64
	Options     []OptionAttribute
}

type OptionAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SupplierOrderInput — заказ в формате поставщика.
type SupplierOrderInput struct {
	Sender      OrderSender        `json:"sender"`
	Recipient   OrderRecipient     `json:"recipient"`
	Products    []OrderProductLine `json:"products"`
	Note        string             `json:"note"`
	SellerNote  string             `json:"sellerNote"`
	OrdererNote string             `json:"ordererNote"`
}

type OrderSender struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

type OrderRecipient struct {
	Name               string             `json:"name"`
	PhoneNumber        string             `json:"phoneNumber"`
	DestinationAddress DestinationAddress `json:"destinationAddress"`
}

type DestinationAddress struct {
	Addr1      string `json:"addr1"`
	Addr2      string `json:"addr2"`
	PostalCode string `json:"postalCode"`
}

type OrderProductLine struct {
	ItemKey          string            `json:"itemKey"`
	Quantity         int               `json:"quantity"`
	OptionAttributes []OptionAttribute `json:"optionAttributes"`
}

// OrderRef — заказ, созданный у поставщика.
type OrderRef struct {
	Key      string            `json:"key"`
	Status   string            `json:"status"`
	Products []OrderRefProduct `json:"products"`
}

type OrderRefProduct struct {
	ItemKey  string `json:"itemKey"`
	Quantity int    `json:"quantity"`
}

// CollectedOrder — итог передачи одного внешнего заказа.
type CollectedOrder struct {
	ExternalOrderID string
	Order           *domain.Order
	SupplierOrders  []OrderRef
	CreatedAt       time.Time
}

// MARKET

// MarketProduct — товар в формате маркетплейса.
type MarketProduct struct {
	ID          string
	Title       string
	Price       int64
	Stock       int
	Images      []string
	CategoryID  string
	Attributes  map[string]string
	Description *string
}

// UploadResult — ответ маркетплейса на загрузку товара.
type UploadResult struct {
	Success          bool
	ProductID        *string
	ChannelProductNo *string
	ErrorMessage     *string
}

// UploadOutcome — итог публикации одного товара.
type UploadOutcome struct {
	ItemID           string
	Success          bool
	DryRun           bool
	ProductID        *string
	ChannelProductNo *string
	Message          string
}

// MarketUpdateOutcome — итог обновления одной карточки.
type MarketUpdateOutcome struct {
	ItemID    string
	ProductID string
	Value     int64 // отправленная цена или остаток
	Success   bool
	Message   string
}

// REPOSITORIES

// ItemUpdate — частичное обновление товара, nil-поля не изменяются.
type ItemUpdate struct {
	Title        *string
	Brand        *string
	CategoryID   *string
	MarginRate   *float64
	HashKey      *string
	NormalizedAt *time.Time
	LastSyncedAt *time.Time
	IsActive     *bool
}

// SyncHistoryFilter — фильтр выборки журнала синхронизации.
type SyncHistoryFilter struct {
	ItemID     *string
	SupplierID *string
	SyncType   *domain.SyncType
	Limit      int
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed"
)

// EventTypeSyncFinished — событие завершения записи журнала синхронизации.
const EventTypeSyncFinished = "sync.finished"

// OutboxEvent — событие, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// WriteRawMessageReq — событие outbox для отправки в брокер. Key задаёт партицию.
type WriteRawMessageReq struct {
	Key       string
	EventType string
	Payload   []byte
}

// MAPPERS

func NewWriteRawMessageReq(key, eventType string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}

func NewOutboxEvent(eventID, eventType, aggregateID string, payload []byte, createdAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   createdAt,
	}
}

func NewSupplierCredentials(account *domain.Account) *SupplierCredentials {
	creds := &SupplierCredentials{
		SupplierID: account.SupplierID,
		AccountID:  account.ID,
		Username:   account.Username,
		Password:   account.Password,
	}
	if account.ApiCredentials != nil {
		creds.ApiKey = account.ApiCredentials.ApiKey
		creds.ApiSecret = account.ApiCredentials.ApiSecret
	}

	return creds
}
