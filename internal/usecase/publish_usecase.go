package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

const dryRunMessage = "드라이런 모드"

var publishMessages = stageMessages{partial: "일부 상품 업로드 실패", failed: "마켓 업로드"}

// PublishUseCase выгружает канонические товары на маркетплейс.
type PublishUseCase struct {
	market         MarketPort
	itemRepo       ItemRepository
	accountRepo    AccountRepository
	cacheRepo      CacheRepository
	ledger         *Ledger
	clock          Clock
	logger         logger.Logger
	minSuccessRate float64
}

func NewPublishUC(
	market MarketPort,
	itemRepo ItemRepository,
	accountRepo AccountRepository,
	cacheRepo CacheRepository,
	ledger *Ledger,
	clock Clock,
	logger logger.Logger,
	minSuccessRate float64,
) *PublishUseCase {
	if minSuccessRate <= 0 {
		minSuccessRate = domain.DefaultMinSuccessRate
	}

	return &PublishUseCase{
		market:         market,
		itemRepo:       itemRepo,
		accountRepo:    accountRepo,
		cacheRepo:      cacheRepo,
		ledger:         ledger,
		clock:          clock,
		logger:         logger,
		minSuccessRate: minSuccessRate,
	}
}

type publishCandidate struct {
	item    *domain.Item
	product *MarketProduct
}

// Execute проверяет учётную запись маркетплейса и выгружает товары по одному.
// Отсутствующая или нездоровая учётная запись завершает запуск до любых обращений к маркетплейсу.
func (u *PublishUseCase) Execute(ctx context.Context, req *PublishReq) (*StageResult[UploadOutcome], error) {
	const op = "PublishUseCase.Execute"

	h, err := u.ledger.Open(ctx, domain.SyncTypeUpload, WithMarket(req.MarketType))
	if err != nil {
		u.logger.Errorf(err, "%s: failed to open sync history", op)
		return NewStageResult[UploadOutcome]("", nil, nil), e.RunFailed(publishMessages.runError(err))
	}

	account, msg := checkMarketAccount(ctx, u.accountRepo, u.clock.Now(), u.minSuccessRate,
		req.MarketType, req.AccountName, publishMessages)
	if account == nil {
		return failStage[UploadOutcome](ctx, u.ledger, h, msg)
	}

	items, err := u.loadItems(ctx, req.ItemIDs)
	if err != nil {
		return failStage[UploadOutcome](ctx, u.ledger, h, publishMessages.runError(err))
	}

	candidates := make([]publishCandidate, 0, len(items))
	for _, item := range items {
		product := u.toMarketProduct(item)
		if product == nil {
			u.logger.Warnf("%s: item %s lacks title or images, skipped", op, item.ID)
			continue
		}
		candidates = append(candidates, publishCandidate{item: item, product: product})
	}

	creds := account.ApiCredentials
	if creds == nil {
		creds = &domain.ApiCredentials{}
	}

	result := domain.NewSyncResult()
	outcomes := make([]UploadOutcome, 0, len(candidates))
	synced := make([]string, 0, len(candidates))
	for _, c := range candidates {
		outcome := u.publishOne(ctx, creds, c, req.DryRun)
		if outcome.Success {
			result.AddSuccess(c.item.ID)
			if !outcome.DryRun {
				synced = append(synced, c.item.ID)
			}
		} else {
			result.AddFailure(c.item.ID, outcome.Message)
		}
		// неудачные выгрузки тоже возвращаются вызывающему
		outcomes = append(outcomes, outcome)
	}

	if len(synced) > 0 {
		if err := u.cacheRepo.DeleteItems(ctx, synced); err != nil {
			u.logger.Warnf("Failed to delete items from cache: %v", e.Wrap(op, err))
		}
	}

	if !req.DryRun && len(candidates) > 0 {
		account.UpdateUsageStats(result.IsSuccessful(), u.clock.Now())
		if err := u.accountRepo.Save(ctx, account); err != nil {
			u.logger.Warnf("%s: failed to save usage stats of account %s: %v", op, account.ID, err)
		}
	}

	return finishStage(ctx, u.ledger, h, result, outcomes, publishMessages)
}

func (u *PublishUseCase) publishOne(ctx context.Context, creds *domain.ApiCredentials, c publishCandidate, dryRun bool) UploadOutcome {
	const op = "PublishUseCase.publishOne"

	if dryRun {
		return UploadOutcome{ItemID: c.item.ID, Success: true, DryRun: true, Message: dryRunMessage}
	}

	res, err := u.market.UploadProduct(ctx, creds, c.product)
	if err != nil {
		u.logger.Warnf("%s: upload of item %s failed: %v", op, c.item.ID, err)
		return UploadOutcome{ItemID: c.item.ID, Message: err.Error()}
	}

	if !res.Success {
		msg := "업로드 실패"
		if res.ErrorMessage != nil && *res.ErrorMessage != "" {
			msg = *res.ErrorMessage
		}
		return UploadOutcome{ItemID: c.item.ID, Message: msg}
	}

	now := u.clock.Now()
	if err := u.itemRepo.Update(ctx, c.item.ID, &ItemUpdate{LastSyncedAt: &now}); err != nil {
		// товар уже на маркетплейсе, поэтому выгрузка считается успешной
		u.logger.Warnf("%s: failed to mark item %s synced: %v", op, c.item.ID, err)
	}
	c.item.MarkSynced(now)

	return UploadOutcome{
		ItemID:           c.item.ID,
		Success:          true,
		ProductID:        res.ProductID,
		ChannelProductNo: res.ChannelProductNo,
	}
}

// loadItems читает товары сначала из кэша, недостающие из БД. Отсутствующие товары пропускаются.
func (u *PublishUseCase) loadItems(ctx context.Context, ids []string) ([]*domain.Item, error) {
	const op = "PublishUseCase.loadItems"

	cached, err := u.cacheRepo.GetItems(ctx, ids)
	if err != nil {
		u.logger.Warnf("Failed to get items from cache: %v", e.Wrap(op, err))
		cached = map[string]*domain.Item{}
	}

	items := make([]*domain.Item, 0, len(ids))
	fromDB := make([]*domain.Item, 0)
	for _, id := range ids {
		if item, ok := cached[id]; ok {
			items = append(items, item)
			continue
		}

		item, err := u.itemRepo.GetByID(ctx, id)
		if errors.Is(err, e.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		items = append(items, item)
		fromDB = append(fromDB, item)
	}

	if len(fromDB) > 0 {
		if err := u.cacheRepo.SetItems(ctx, fromDB); err != nil {
			u.logger.Warnf("Failed to cache items: %v", e.Wrap(op, err))
		}
	}

	return items, nil
}

// toMarketProduct возвращает nil для товаров без названия или изображений.
func (u *PublishUseCase) toMarketProduct(item *domain.Item) *MarketProduct {
	if item.Title == "" || len(item.Images) == 0 {
		return nil
	}

	attributes := map[string]string{
		"brand":        item.Brand,
		"model":        derefOr(item.Model, ""),
		"manufacturer": derefOr(item.Manufacturer, ""),
	}

	return &MarketProduct{
		ID:          item.ID,
		Title:       item.Title,
		Price:       item.Price.FinalPrice(),
		Stock:       item.StockQuantity,
		Images:      item.Images,
		CategoryID:  item.CategoryID,
		Attributes:  attributes,
		Description: item.Description,
	}
}

// checkMarketAccount находит учётную запись маркетплейса и проверяет её состояние.
// Если запуск продолжать нельзя, возвращает nil и текст причины.
func checkMarketAccount(
	ctx context.Context,
	repo AccountRepository,
	now time.Time,
	minSuccessRate float64,
	marketType, accountName string,
	msgs stageMessages,
) (*domain.Account, string) {
	account, err := repo.GetMarketAccount(ctx, marketType, accountName)
	if errors.Is(err, e.ErrAccountNotFound) {
		return nil, fmt.Sprintf("마켓 계정을 찾을 수 없습니다: %s/%s", marketType, accountName)
	}
	if err != nil {
		return nil, msgs.runError(err)
	}

	if !account.IsHealthy(now, minSuccessRate) {
		return nil, fmt.Sprintf("마켓 계정 상태가 양호하지 않습니다: %s", account.AccountName)
	}

	return account, ""
}

func derefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
