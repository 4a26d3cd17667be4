package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// SupplierPort — коннектор к каталогу поставщика.
type SupplierPort interface {
	Authenticate(ctx context.Context, creds *SupplierCredentials) (*domain.TokenInfo, error)
	FetchItems(ctx context.Context, supplierID, accountID string, itemKeys []string) ([]RawItem, error)
	GetCategories(ctx context.Context, supplierID, accountID string) ([]domain.Category, error)
	CheckCredentials(ctx context.Context, creds *SupplierCredentials) bool
	// CreateOrder может вернуть несколько заказов, если поставщик разделил заказ.
	CreateOrder(ctx context.Context, supplierID, accountID string, order *SupplierOrderInput) ([]OrderRef, error)
}

// MarketPort — коннектор к маркетплейсу.
type MarketPort interface {
	Authenticate(ctx context.Context, creds *domain.ApiCredentials) (bool, error)
	UploadProduct(ctx context.Context, creds *domain.ApiCredentials, product *MarketProduct) (*UploadResult, error)
	UpdateProduct(ctx context.Context, creds *domain.ApiCredentials, productID string, product *MarketProduct) (*UploadResult, error)
	GetProductStatus(ctx context.Context, creds *domain.ApiCredentials, productID string) (domain.SyncStatus, error)
	UpdateInventory(ctx context.Context, creds *domain.ApiCredentials, productID string, quantity int) (bool, error)
	UpdatePrice(ctx context.Context, creds *domain.ApiCredentials, productID string, price int64) (bool, error)
}

// Clock — источник времени. Все этапы и хранилище токенов получают время только через него.
type Clock interface {
	Now() time.Time
	Today() time.Time
	AddDays(n int) time.Time
	AddHours(n int) time.Time
	IsExpired(at time.Time, buffer time.Duration) bool
	Sleep(ctx context.Context, d time.Duration) error
}

// TokenRefresher выпускает новый токен для учётной записи.
type TokenRefresher func(ctx context.Context) (*domain.TokenInfo, error)

// TokenStore — кэш токенов доступа к внешним API.
type TokenStore interface {
	Get(ctx context.Context, account *domain.Account) *domain.TokenInfo
	RefreshIfNeeded(ctx context.Context, account *domain.Account, refresher TokenRefresher) (*domain.TokenInfo, error)
	Invalidate(ctx context.Context, account *domain.Account) error
	CleanupExpired() int
}

// TxManager выполняет fn в одной транзакции БД.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SnapshotInfra сохраняет сырые ответы поставщика.
type SnapshotInfra interface {
	ArchiveRawItems(ctx context.Context, runID string, items []RawItem) (string, error)
}

// MessageProducer публикует уже сериализованные события.
type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
