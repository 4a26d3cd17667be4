package usecase

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

const defaultUpdateConcurrency = 3

var (
	priceUpdateMessages = stageMessages{partial: "일부 가격 업데이트 실패", failed: "가격 업데이트"}
	stockUpdateMessages = stageMessages{partial: "일부 재고 업데이트 실패", failed: "재고 업데이트"}
)

// MarketUpdateUseCase отправляет на маркетплейс текущие цены или остатки уже выгруженных товаров.
type MarketUpdateUseCase struct {
	market         MarketPort
	itemRepo       ItemRepository
	accountRepo    AccountRepository
	cacheRepo      CacheRepository
	ledger         *Ledger
	clock          Clock
	logger         logger.Logger
	minSuccessRate float64
	maxConcurrency int
}

func NewMarketUpdateUC(
	market MarketPort,
	itemRepo ItemRepository,
	accountRepo AccountRepository,
	cacheRepo CacheRepository,
	ledger *Ledger,
	clock Clock,
	logger logger.Logger,
	minSuccessRate float64,
	maxConcurrency int,
) *MarketUpdateUseCase {
	if minSuccessRate <= 0 {
		minSuccessRate = domain.DefaultMinSuccessRate
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultUpdateConcurrency
	}

	return &MarketUpdateUseCase{
		market:         market,
		itemRepo:       itemRepo,
		accountRepo:    accountRepo,
		cacheRepo:      cacheRepo,
		ledger:         ledger,
		clock:          clock,
		logger:         logger,
		minSuccessRate: minSuccessRate,
		maxConcurrency: maxConcurrency,
	}
}

// Execute обновляет карточки параллельно. Неудача одной карточки не влияет на остальные.
func (u *MarketUpdateUseCase) Execute(ctx context.Context, req *MarketUpdateReq) (*StageResult[MarketUpdateOutcome], error) {
	const op = "MarketUpdateUseCase.Execute"

	syncType, msgs, ok := updateKind(req.Kind)
	if !ok {
		return NewStageResult[MarketUpdateOutcome]("", nil, nil), e.RunFailed(e.Wrap(op, e.ErrUnknownUpdateKind).Error())
	}

	h, err := u.ledger.Open(ctx, syncType, WithMarket(req.MarketType))
	if err != nil {
		u.logger.Errorf(err, "%s: failed to open sync history", op)
		return NewStageResult[MarketUpdateOutcome]("", nil, nil), e.RunFailed(msgs.runError(err))
	}

	account, msg := checkMarketAccount(ctx, u.accountRepo, u.clock.Now(), u.minSuccessRate,
		req.MarketType, req.AccountName, msgs)
	if account == nil {
		return failStage[MarketUpdateOutcome](ctx, u.ledger, h, msg)
	}

	creds := account.ApiCredentials
	if creds == nil {
		creds = &domain.ApiCredentials{}
	}

	limit := req.MaxConcurrency
	if limit <= 0 {
		limit = u.maxConcurrency
	}

	outcomes := fanOut(ctx, req.Targets, limit, func(ctx context.Context, t MarketTarget) (MarketUpdateOutcome, error) {
		return u.updateOne(ctx, creds, req.Kind, t)
	})

	result := domain.NewSyncResult()
	items := make([]MarketUpdateOutcome, 0, len(outcomes))
	synced := make([]string, 0, len(outcomes))
	for i, out := range outcomes {
		target := req.Targets[i]
		key := unitKey(target.ItemID, "target", i)

		if out.err != nil {
			u.logger.Warnf("%s: %s update of item %s failed: %v", op, req.Kind, key, out.err)
			result.AddFailure(key, out.err.Error())
			items = append(items, MarketUpdateOutcome{ItemID: target.ItemID, ProductID: target.ProductID, Message: out.err.Error()})
			continue
		}

		result.AddSuccess(key)
		items = append(items, out.value)
		synced = append(synced, out.value.ItemID)
	}

	if len(synced) > 0 {
		if err := u.cacheRepo.DeleteItems(ctx, synced); err != nil {
			u.logger.Warnf("Failed to delete items from cache: %v", e.Wrap(op, err))
		}
	}

	if len(req.Targets) > 0 {
		account.UpdateUsageStats(result.IsSuccessful(), u.clock.Now())
		if err := u.accountRepo.Save(ctx, account); err != nil {
			u.logger.Warnf("%s: failed to save usage stats of account %s: %v", op, account.ID, err)
		}
	}

	return finishStage(ctx, u.ledger, h, result, items, msgs)
}

func (u *MarketUpdateUseCase) updateOne(ctx context.Context, creds *domain.ApiCredentials, kind MarketUpdateKind, t MarketTarget) (MarketUpdateOutcome, error) {
	const op = "MarketUpdateUseCase.updateOne"

	if t.ItemID == "" || t.ProductID == "" {
		return MarketUpdateOutcome{}, e.ErrMissingFields
	}

	item, err := u.itemRepo.GetByID(ctx, t.ItemID)
	if err != nil {
		return MarketUpdateOutcome{}, err
	}

	var (
		value    int64
		accepted bool
	)
	switch kind {
	case MarketUpdatePrice:
		value = item.Price.FinalPrice()
		accepted, err = u.market.UpdatePrice(ctx, creds, t.ProductID, value)
	case MarketUpdateStock:
		// снятый с продажи товар выставляется с нулевым остатком
		qty := item.StockQuantity
		if !item.IsActive {
			qty = 0
		}
		value = int64(qty)
		accepted, err = u.market.UpdateInventory(ctx, creds, t.ProductID, qty)
	}
	if err != nil {
		return MarketUpdateOutcome{}, err
	}
	if !accepted {
		return MarketUpdateOutcome{}, e.ErrMarketRejected
	}

	now := u.clock.Now()
	if err := u.itemRepo.Update(ctx, item.ID, &ItemUpdate{LastSyncedAt: &now}); err != nil {
		u.logger.Warnf("%s: failed to mark item %s synced: %v", op, item.ID, err)
	}

	return MarketUpdateOutcome{ItemID: item.ID, ProductID: t.ProductID, Value: value, Success: true}, nil
}

func updateKind(kind MarketUpdateKind) (domain.SyncType, stageMessages, bool) {
	switch kind {
	case MarketUpdatePrice:
		return domain.SyncTypePriceUpdate, priceUpdateMessages, true
	case MarketUpdateStock:
		return domain.SyncTypeStockUpdate, stockUpdateMessages, true
	default:
		return "", stageMessages{}, false
	}
}
