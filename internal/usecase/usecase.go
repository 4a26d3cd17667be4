package usecase

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

type IngestUC interface {
	Execute(ctx context.Context, req *IngestReq) (*StageResult[*domain.Item], error)
	SyncCategories(ctx context.Context, supplierID, accountID string) ([]domain.Category, error)
}

type NormalizeUC interface {
	Execute(ctx context.Context, req *NormalizeReq) (*StageResult[*domain.Item], error)
}

type PublishUC interface {
	Execute(ctx context.Context, req *PublishReq) (*StageResult[UploadOutcome], error)
}

type MarketUpdateUC interface {
	Execute(ctx context.Context, req *MarketUpdateReq) (*StageResult[MarketUpdateOutcome], error)
}

type CollectOrdersUC interface {
	Execute(ctx context.Context, req *CollectOrdersReq) (*StageResult[CollectedOrder], error)
}

type SyncHistoryUC interface {
	Get(ctx context.Context, id string) (*domain.SyncHistory, error)
	List(ctx context.Context, filter SyncHistoryFilter) ([]*domain.SyncHistory, error)
}
