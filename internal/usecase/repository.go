package usecase

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// ItemRepository хранит канонические товары. Save выполняет идемпотентный upsert по ID.
type ItemRepository interface {
	Save(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*domain.Item, error)
	FindByHash(ctx context.Context, hashKey string) (*domain.Item, error)
	Update(ctx context.Context, id string, upd *ItemUpdate) error
}

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetSupplierAccount(ctx context.Context, supplierID, accountID string) (*domain.Account, error)
	GetMarketAccount(ctx context.Context, marketType, accountName string) (*domain.Account, error)
}

type SyncHistoryRepository interface {
	Save(ctx context.Context, history *domain.SyncHistory) error
	GetByID(ctx context.Context, id string) (*domain.SyncHistory, error)
	List(ctx context.Context, filter SyncHistoryFilter) ([]*domain.SyncHistory, error)
}

type CategoryRepository interface {
	Upsert(ctx context.Context, categories []domain.Category) error
	ListBySupplier(ctx context.Context, supplierID string) ([]domain.Category, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
}

// CacheRepository — кэш канонических товаров для этапа публикации.
type CacheRepository interface {
	GetItems(ctx context.Context, ids []string) (map[string]*domain.Item, error)
	SetItems(ctx context.Context, items []*domain.Item) error
	DeleteItems(ctx context.Context, ids []string) error
}

type SnapshotRepository interface {
	Upload(ctx context.Context, snapshot *domain.Snapshot) (string, error)
	Delete(ctx context.Context, key string) error
}
