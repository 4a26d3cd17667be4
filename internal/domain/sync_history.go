package domain

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

// SyncType — тип этапа конвейера, который описывает запись журнала.
type SyncType string

const (
	SyncTypeIngest      SyncType = "ingest"
	SyncTypeNormalize   SyncType = "normalize"
	SyncTypeUpload      SyncType = "upload"
	SyncTypePriceUpdate SyncType = "price_update"
	SyncTypeStockUpdate SyncType = "stock_update"
	SyncTypeValidate    SyncType = "validate"
)

// SyncStatus — состояние записи журнала синхронизации.
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusSuccess    SyncStatus = "success"
	SyncStatusFailed     SyncStatus = "failed"
	SyncStatusCancelled  SyncStatus = "cancelled"
)

// IsTerminal сообщает, является ли статус конечным.
func (s SyncStatus) IsTerminal() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusFailed, SyncStatusCancelled:
		return true
	default:
		return false
	}
}

// DefaultMaxRetries — количество повторов, после которого запуск больше не повторяется.
const DefaultMaxRetries = 3

// SyncResult — агрегированный итог одного запуска.
// Каждая единица работы вносит ровно один вызов AddSuccess или AddFailure.
type SyncResult struct {
	SuccessCount int
	FailureCount int
	TotalCount   int
	Errors       map[string]string
}

func NewSyncResult() *SyncResult {
	return &SyncResult{Errors: make(map[string]string)}
}

func (r *SyncResult) AddSuccess(_ string) {
	r.SuccessCount++
	r.TotalCount++
}

func (r *SyncResult) AddFailure(unitID string, errMsg string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.FailureCount++
	r.TotalCount++
	r.Errors[unitID] = errMsg
}

// IsSuccessful истинно, если ошибок нет и была обработана хотя бы одна единица.
func (r *SyncResult) IsSuccessful() bool {
	return r.FailureCount == 0 && r.TotalCount > 0
}

func (r *SyncResult) SuccessRate() float64 {
	if r.TotalCount == 0 {
		return 0
	}

	return float64(r.SuccessCount) / float64(r.TotalCount)
}

// Summary формирует сообщение вида "<prefix>: N/M".
func (r *SyncResult) Summary(prefix string) string {
	return fmt.Sprintf("%s: %d/%d", prefix, r.FailureCount, r.TotalCount)
}

// SyncHistory — запись журнала одного запуска этапа конвейера.
// Переходы: pending -> in_progress -> {success | failed}. Конечные состояния неизменяемы.
type SyncHistory struct {
	ID              string
	SyncType        SyncType
	Status          SyncStatus
	ItemID          *string
	SupplierID      *string
	MarketType      *string
	Result          *SyncResult
	Details         map[string]any
	ErrorMessage    *string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	DurationSeconds *float64
	RetryCount      int
	MaxRetries      int
	CreatedAt       time.Time
}

func NewSyncHistory(id string, syncType SyncType, now time.Time) *SyncHistory {
	return &SyncHistory{
		ID:         id,
		SyncType:   syncType,
		Status:     SyncStatusPending,
		Details:    make(map[string]any),
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  now,
	}
}

// Start переводит запись из pending в in_progress.
func (h *SyncHistory) Start(now time.Time) error {
	if h.Status != SyncStatusPending {
		return fmt.Errorf("%w: %s -> %s", e.ErrInvalidTransition, h.Status, SyncStatusInProgress)
	}

	h.Status = SyncStatusInProgress
	h.StartedAt = &now
	return nil
}

// Complete фиксирует агрегированный результат; статус определяется SyncResult.IsSuccessful.
func (h *SyncHistory) Complete(result *SyncResult, now time.Time) error {
	if h.Status != SyncStatusInProgress {
		return fmt.Errorf("%w: %s -> complete", e.ErrInvalidTransition, h.Status)
	}

	if result.IsSuccessful() {
		h.Status = SyncStatusSuccess
	} else {
		h.Status = SyncStatusFailed
	}
	h.Result = result
	h.finish(now)
	return nil
}

// Fail завершает запуск без результата, с сообщением об ошибке.
func (h *SyncHistory) Fail(message string, now time.Time) error {
	if h.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", e.ErrInvalidTransition, h.Status, SyncStatusFailed)
	}

	h.Status = SyncStatusFailed
	h.ErrorMessage = &message
	h.finish(now)
	return nil
}

// finish проставляет время завершения; длительность известна только при наличии StartedAt.
func (h *SyncHistory) finish(now time.Time) {
	h.CompletedAt = &now
	if h.StartedAt != nil {
		d := now.Sub(*h.StartedAt).Seconds()
		h.DurationSeconds = &d
	}
}

// CanRetry сообщает, может ли внешний вызывающий повторить неуспешный запуск.
func (h *SyncHistory) CanRetry() bool {
	return h.Status == SyncStatusFailed && h.RetryCount < h.MaxRetries
}

// IncrementRetry увеличивает счётчик повторов. Допустим только для неуспешной записи.
func (h *SyncHistory) IncrementRetry() error {
	if !h.CanRetry() {
		return fmt.Errorf("%w: retry not allowed from %s (%d/%d)", e.ErrInvalidTransition, h.Status, h.RetryCount, h.MaxRetries)
	}

	h.RetryCount++
	return nil
}
