package usecase

import (
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewSyncFinishedEvent формирует событие outbox о завершении записи журнала.
// Полезная нагрузка кодируется как protobuf Struct.
func NewSyncFinishedEvent(h *domain.SyncHistory, now time.Time) (*OutboxEvent, error) {
	fields := map[string]any{
		"history_id":  h.ID,
		"sync_type":   string(h.SyncType),
		"status":      string(h.Status),
		"retry_count": h.RetryCount,
		"max_retries": h.MaxRetries,
	}

	if h.SupplierID != nil {
		fields["supplier_id"] = *h.SupplierID
	}
	if h.MarketType != nil {
		fields["market_type"] = *h.MarketType
	}
	if h.ItemID != nil {
		fields["item_id"] = *h.ItemID
	}
	if h.Result != nil {
		fields["success_count"] = h.Result.SuccessCount
		fields["failure_count"] = h.Result.FailureCount
		fields["total_count"] = h.Result.TotalCount
	}
	if h.ErrorMessage != nil {
		fields["error_message"] = *h.ErrorMessage
	}
	if h.DurationSeconds != nil {
		fields["duration_seconds"] = *h.DurationSeconds
	}
	if h.CompletedAt != nil {
		fields["completed_at"] = h.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	payload, err := proto.Marshal(st)
	if err != nil {
		return nil, err
	}

	return NewOutboxEvent(uuid.NewString(), EventTypeSyncFinished, h.ID, payload, now), nil
}
