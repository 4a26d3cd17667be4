package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

// DefaultIngestConcurrency — число одновременных конвертаций по умолчанию.
const DefaultIngestConcurrency = 5

var ingestMessages = stageMessages{partial: "일부 상품 수집 실패", failed: "상품 수집"}

// IngestUseCase собирает товары поставщика и сохраняет их в каноническом виде.
type IngestUseCase struct {
	supplier       SupplierPort
	itemRepo       ItemRepository
	categoryRepo   CategoryRepository
	cacheRepo      CacheRepository
	snapshots      SnapshotInfra
	ledger         *Ledger
	clock          Clock
	logger         logger.Logger
	maxConcurrency int
}

func NewIngestUC(
	supplier SupplierPort,
	itemRepo ItemRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	snapshots SnapshotInfra,
	ledger *Ledger,
	clock Clock,
	logger logger.Logger,
	maxConcurrency int,
) *IngestUseCase {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultIngestConcurrency
	}

	return &IngestUseCase{
		supplier:       supplier,
		itemRepo:       itemRepo,
		categoryRepo:   categoryRepo,
		cacheRepo:      cacheRepo,
		snapshots:      snapshots,
		ledger:         ledger,
		clock:          clock,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Execute запрашивает у поставщика сырые товары, параллельно конвертирует их и сохраняет успешные.
func (u *IngestUseCase) Execute(ctx context.Context, req *IngestReq) (*StageResult[*domain.Item], error) {
	const op = "IngestUseCase.Execute"

	h, err := u.ledger.Open(ctx, domain.SyncTypeIngest, WithSupplier(req.SupplierID))
	if err != nil {
		u.logger.Errorf(err, "%s: failed to open sync history", op)
		return NewStageResult[*domain.Item]("", nil, nil), e.RunFailed(ingestMessages.runError(err))
	}

	raw, err := u.supplier.FetchItems(ctx, req.SupplierID, req.AccountID, req.ItemKeys)
	if err != nil {
		return failStage[*domain.Item](ctx, u.ledger, h, ingestMessages.runError(err))
	}

	if len(raw) == 0 {
		return finishStage[*domain.Item](ctx, u.ledger, h, domain.NewSyncResult(), nil, ingestMessages)
	}

	u.archive(ctx, h, raw)

	limit := req.MaxConcurrency
	if limit <= 0 {
		limit = u.maxConcurrency
	}

	outcomes := fanOut(ctx, raw, limit, func(_ context.Context, r RawItem) (*domain.Item, error) {
		return u.convert(r, req.SupplierID)
	})

	result := domain.NewSyncResult()
	saved := make([]*domain.Item, 0, len(raw))
	for i, out := range outcomes {
		key := unitKey(raw[i].ID, "item", i)

		if out.err != nil {
			u.logger.Warnf("%s: failed to convert item %s: %v", op, key, out.err)
			result.AddFailure(key, out.err.Error())
			continue
		}

		// каждое сохранение независимо, ошибка одного товара не откатывает остальные
		if err := u.itemRepo.Save(ctx, out.value); err != nil {
			u.logger.Warnf("%s: failed to save item %s: %v", op, key, err)
			result.AddFailure(key, err.Error())
			continue
		}

		result.AddSuccess(key)
		saved = append(saved, out.value)
	}

	u.invalidateCache(ctx, saved)

	return finishStage(ctx, u.ledger, h, result, saved, ingestMessages)
}

// SyncCategories загружает дерево категорий поставщика и сохраняет его.
func (u *IngestUseCase) SyncCategories(ctx context.Context, supplierID, accountID string) ([]domain.Category, error) {
	const op = "IngestUseCase.SyncCategories"

	categories, err := u.supplier.GetCategories(ctx, supplierID, accountID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	for idx := range categories {
		if categories[idx].SupplierID == "" {
			categories[idx].SupplierID = supplierID
		}
	}

	if err := u.categoryRepo.Upsert(ctx, categories); err != nil {
		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("%s: synced %d categories for supplier %s", op, len(categories), supplierID)
	return categories, nil
}

// convert строит канонический товар из сырых данных поставщика.
func (u *IngestUseCase) convert(raw RawItem, supplierID string) (*domain.Item, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return nil, e.ErrItemIDRequired
	}

	if strings.TrimSpace(raw.Title) == "" {
		return nil, e.ErrItemTitleRequired
	}

	if raw.Price.Original < 0 {
		return nil, e.ErrNegativePrice
	}

	margin := domain.DefaultMarginRate
	if raw.Price.MarginRate != nil {
		margin = *raw.Price.MarginRate
	}

	options := make([]domain.ItemOption, 0, len(raw.Options))
	optionStock := 0
	for _, opt := range raw.Options {
		options = append(options, domain.ItemOption{
			Name:            opt.Name,
			Value:           opt.Value,
			PriceAdjustment: opt.PriceAdjustment,
			StockQuantity:   opt.StockQuantity,
		})
		optionStock += opt.StockQuantity
	}

	if raw.SupplierID != "" {
		supplierID = raw.SupplierID
	}

	item := domain.NewItem(
		raw.ID,
		raw.Title,
		raw.Brand,
		domain.NewPricePolicy(raw.Price.Original, raw.Price.Sale, margin),
		options,
		append([]string(nil), raw.Images...),
		raw.Category,
		supplierID,
		u.clock.Now(),
	)
	item.Description = raw.Description
	item.Manufacturer = raw.Manufacturer
	item.Model = raw.Model

	if raw.EstimatedShippingDays != nil {
		item.EstimatedShippingDays = *raw.EstimatedShippingDays
	}

	// без явного остатка берём сумму остатков по вариантам
	if raw.StockQuantity != nil {
		item.StockQuantity = *raw.StockQuantity
	} else {
		item.StockQuantity = optionStock
	}

	return item, nil
}

// archive сохраняет сырой ответ поставщика. Ошибка архивации не влияет на запуск.
// Без SnapshotInfra архивация отключена.
func (u *IngestUseCase) archive(ctx context.Context, h *domain.SyncHistory, raw []RawItem) {
	const op = "IngestUseCase.archive"

	if u.snapshots == nil {
		return
	}

	key, err := u.snapshots.ArchiveRawItems(ctx, h.ID, raw)
	if err != nil {
		u.logger.Warnf("%s: failed to archive raw items for run %s: %v", op, h.ID, err)
		return
	}

	h.Details["snapshot_key"] = key
	h.Details["raw_count"] = len(raw)
}

func (u *IngestUseCase) invalidateCache(ctx context.Context, items []*domain.Item) {
	const op = "IngestUseCase.invalidateCache"

	if len(items) == 0 {
		return
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	if err := u.cacheRepo.DeleteItems(ctx, ids); err != nil {
		u.logger.Warnf("Failed to delete items from cache: %v", e.Wrap(op, err))
	}
}
