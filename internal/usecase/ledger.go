package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/google/uuid"
)

// HistoryScope задаёт область действия записи журнала.
type HistoryScope func(h *domain.SyncHistory)

func WithSupplier(supplierID string) HistoryScope {
	return func(h *domain.SyncHistory) {
		if supplierID != "" {
			h.SupplierID = &supplierID
		}
	}
}

func WithMarket(marketType string) HistoryScope {
	return func(h *domain.SyncHistory) {
		if marketType != "" {
			h.MarketType = &marketType
		}
	}
}

func WithItem(itemID string) HistoryScope {
	return func(h *domain.SyncHistory) {
		if itemID != "" {
			h.ItemID = &itemID
		}
	}
}

// Ledger ведёт журнал запусков этапов конвейера.
// Конечная запись журнала и событие outbox сохраняются в одной транзакции.
type Ledger struct {
	historyRepo SyncHistoryRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	clock       Clock
	logger      logger.Logger
}

func NewLedger(
	historyRepo SyncHistoryRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	clock Clock,
	logger logger.Logger,
) *Ledger {
	return &Ledger{
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		clock:       clock,
		logger:      logger,
	}
}

// Open создаёт запись в статусе pending и сразу переводит её в in_progress.
func (l *Ledger) Open(ctx context.Context, syncType domain.SyncType, scopes ...HistoryScope) (*domain.SyncHistory, error) {
	const op = "Ledger.Open"

	h := domain.NewSyncHistory(uuid.NewString(), syncType, l.clock.Now())
	for _, scope := range scopes {
		scope(h)
	}

	if err := l.historyRepo.Save(ctx, h); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := h.Start(l.clock.Now()); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := l.historyRepo.Save(ctx, h); err != nil {
		return nil, e.Wrap(op, err)
	}

	l.logger.Infof("sync run started: id=%s type=%s", h.ID, h.SyncType)
	return h, nil
}

// Complete закрывает запись агрегированным результатом.
func (l *Ledger) Complete(ctx context.Context, h *domain.SyncHistory, result *domain.SyncResult) error {
	const op = "Ledger.Complete"

	if err := h.Complete(result, l.clock.Now()); err != nil {
		return e.Wrap(op, err)
	}

	if err := l.finalize(ctx, h); err != nil {
		return e.Wrap(op, err)
	}

	l.logger.Infof("sync run finished: id=%s type=%s status=%s success=%d failure=%d total=%d",
		h.ID, h.SyncType, h.Status, result.SuccessCount, result.FailureCount, result.TotalCount)
	return nil
}

// Fail закрывает запись без результата.
func (l *Ledger) Fail(ctx context.Context, h *domain.SyncHistory, message string) error {
	const op = "Ledger.Fail"

	if err := h.Fail(message, l.clock.Now()); err != nil {
		return e.Wrap(op, err)
	}

	if err := l.finalize(ctx, h); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (l *Ledger) finalize(ctx context.Context, h *domain.SyncHistory) error {
	event, err := NewSyncFinishedEvent(h, l.clock.Now())
	if err != nil {
		return err
	}

	return l.txManager.Do(ctx, func(ctx context.Context) error {
		if err := l.historyRepo.Save(ctx, h); err != nil {
			return err
		}

		_, err := l.outboxRepo.Create(ctx, event)
		return err
	})
}

// forceFail сохраняет запись как failed вне транзакции, если закрыть её обычным путём не удалось.
// В памяти запись к этому моменту уже может быть в конечном статусе, в хранилище она ещё in_progress.
func (l *Ledger) forceFail(ctx context.Context, h *domain.SyncHistory, message string) error {
	const op = "Ledger.forceFail"

	failed := *h
	failed.Status = domain.SyncStatusFailed
	failed.ErrorMessage = &message
	if failed.CompletedAt == nil {
		now := l.clock.Now()
		failed.CompletedAt = &now
	}

	if err := l.historyRepo.Save(context.WithoutCancel(ctx), &failed); err != nil {
		return e.Wrap(op, err)
	}

	*h = failed
	return nil
}

// stageMessages — тексты итогов этапа для вызывающей стороны.
type stageMessages struct {
	partial string // "일부 상품 수집 실패"
	failed  string // "상품 수집"
}

func (m stageMessages) runError(err error) string {
	return fmt.Sprintf("%s 중 오류 발생: %v", m.failed, err)
}

// finishStage закрывает запись журнала результатом и формирует ответ этапа:
// nil — все единицы успешны, e.Partial — часть единиц не обработана.
func finishStage[T any](
	ctx context.Context,
	l *Ledger,
	h *domain.SyncHistory,
	result *domain.SyncResult,
	items []T,
	msgs stageMessages,
) (*StageResult[T], error) {
	if err := l.Complete(ctx, h, result); err != nil {
		l.logger.Errorf(err, "failed to close sync history %s", h.ID)
		message := msgs.runError(err)
		if err := l.forceFail(ctx, h, message); err != nil {
			l.logger.Errorf(err, "sync history %s left in_progress", h.ID)
		}
		return NewStageResult[T](h.ID, nil, result), e.RunFailed(message)
	}

	if result.FailureCount > 0 {
		return NewStageResult(h.ID, items, result), e.Partial(result.Summary(msgs.partial))
	}

	return NewStageResult(h.ID, items, result), nil
}

// failStage завершает весь запуск с ошибкой, не дошедший до агрегирования.
func failStage[T any](ctx context.Context, l *Ledger, h *domain.SyncHistory, message string) (*StageResult[T], error) {
	l.logger.Errorf(e.ErrRunFailed, "sync run %s failed: %s", h.ID, message)

	if err := l.Fail(ctx, h, message); err != nil {
		l.logger.Errorf(err, "failed to save failed sync history %s", h.ID)
		if err := l.forceFail(ctx, h, message); err != nil {
			l.logger.Errorf(err, "sync history %s left in_progress", h.ID)
		}
	}

	return NewStageResult[T](h.ID, nil, nil), e.RunFailed(message)
}

// unitKey возвращает идентификатор единицы работы для SyncResult.Errors.
func unitKey(id, prefix string, idx int) string {
	if id != "" {
		return id
	}

	return fmt.Sprintf("%s_%d", prefix, idx)
}
