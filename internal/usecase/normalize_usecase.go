package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

// DefaultNormalizeBatchSize — размер страницы при обходе товаров поставщика.
const DefaultNormalizeBatchSize = 100

var normalizeMessages = stageMessages{partial: "일부 상품 정규화 실패", failed: "상품 정규화"}

// NormalizeUseCase применяет правила нормализации к уже сохранённым товарам.
// Товары обрабатываются последовательно.
type NormalizeUseCase struct {
	itemRepo  ItemRepository
	cacheRepo CacheRepository
	rules     *NormalizationRules
	ledger    *Ledger
	clock     Clock
	logger    logger.Logger
	batchSize int
}

func NewNormalizeUC(
	itemRepo ItemRepository,
	cacheRepo CacheRepository,
	rules *NormalizationRules,
	ledger *Ledger,
	clock Clock,
	logger logger.Logger,
	batchSize int,
) *NormalizeUseCase {
	if batchSize <= 0 {
		batchSize = DefaultNormalizeBatchSize
	}

	return &NormalizeUseCase{
		itemRepo:  itemRepo,
		cacheRepo: cacheRepo,
		rules:     rules,
		ledger:    ledger,
		clock:     clock,
		logger:    logger,
		batchSize: batchSize,
	}
}

func (u *NormalizeUseCase) Execute(ctx context.Context, req *NormalizeReq) (*StageResult[*domain.Item], error) {
	const op = "NormalizeUseCase.Execute"

	h, err := u.ledger.Open(ctx, domain.SyncTypeNormalize, WithSupplier(req.SupplierID))
	if err != nil {
		u.logger.Errorf(err, "%s: failed to open sync history", op)
		return NewStageResult[*domain.Item]("", nil, nil), e.RunFailed(normalizeMessages.runError(err))
	}

	items, err := u.loadItems(ctx, req)
	if err != nil {
		return failStage[*domain.Item](ctx, u.ledger, h, normalizeMessages.runError(err))
	}

	result := domain.NewSyncResult()
	normalized := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		n := u.rules.Apply(item)
		now := u.clock.Now()
		n.NormalizedAt = now

		upd := &ItemUpdate{
			Title:        &n.Title,
			Brand:        &n.Brand,
			CategoryID:   &n.CategoryID,
			MarginRate:   &n.Price.MarginRate,
			HashKey:      &n.HashKey,
			NormalizedAt: &now,
		}

		if err := u.itemRepo.Update(ctx, item.ID, upd); err != nil {
			u.logger.Warnf("%s: failed to update item %s: %v", op, item.ID, err)
			result.AddFailure(item.ID, err.Error())
			continue
		}

		result.AddSuccess(item.ID)
		normalized = append(normalized, n)
	}

	if len(normalized) > 0 {
		ids := make([]string, 0, len(normalized))
		for _, n := range normalized {
			ids = append(ids, n.ID)
		}
		if err := u.cacheRepo.DeleteItems(ctx, ids); err != nil {
			u.logger.Warnf("Failed to delete items from cache: %v", e.Wrap(op, err))
		}
	}

	return finishStage(ctx, u.ledger, h, result, normalized, normalizeMessages)
}

// loadItems возвращает товары по списку ID (отсутствующие пропускаются)
// либо постранично все товары поставщика до первой пустой страницы.
func (u *NormalizeUseCase) loadItems(ctx context.Context, req *NormalizeReq) ([]*domain.Item, error) {
	if len(req.ItemIDs) > 0 {
		items := make([]*domain.Item, 0, len(req.ItemIDs))
		for _, id := range req.ItemIDs {
			item, err := u.itemRepo.GetByID(ctx, id)
			if errors.Is(err, e.ErrItemNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		return items, nil
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = u.batchSize
	}

	var items []*domain.Item
	for offset := 0; ; offset += batchSize {
		batch, err := u.itemRepo.GetBySupplier(ctx, req.SupplierID, batchSize, offset)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		items = append(items, batch...)
	}

	return items, nil
}
