package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestLedger_CompleteWritesOutboxEvent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	rec, err := h.ledger.Open(ctx, domain.SyncTypeNormalize, WithSupplier("ownerclan"), WithItem("W1"))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusInProgress, rec.Status)

	result := domain.NewSyncResult()
	result.AddSuccess("W1")
	require.NoError(t, h.ledger.Complete(ctx, rec, result))

	require.Len(t, h.outbox.events, 1)
	event := h.outbox.events[0]
	assert.Equal(t, EventTypeSyncFinished, event.EventType)
	assert.Equal(t, rec.ID, event.AggregateID)

	var payload structpb.Struct
	require.NoError(t, proto.Unmarshal(event.Payload, &payload))
	fields := payload.AsMap()
	assert.Equal(t, "success", fields["status"])
	assert.Equal(t, "normalize", fields["sync_type"])
	assert.Equal(t, "W1", fields["item_id"])
	assert.Equal(t, float64(1), fields["success_count"])
}

func TestLedger_CloseFailureLeavesRecordFailed(t *testing.T) {
	h := newHarness()
	// pending, in_progress, затем сохранение итога
	h.history.failOn = 3
	h.history.failErr = errors.New("connection reset")
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return(rawItems(), nil)

	res, err := newIngest(h, supplier, nil).Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrRunFailed)
	assert.False(t, e.IsPartial(err))
	assert.Empty(t, res.Items)

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Contains(t, *rec.ErrorMessage, "connection reset")
	assert.NotNil(t, rec.CompletedAt)
	assert.Equal(t, []domain.SyncStatus{domain.SyncStatusPending, domain.SyncStatusInProgress, domain.SyncStatusFailed}, h.history.statuses)
	assert.Empty(t, h.outbox.events)
}

func TestLedger_FailSaveErrorStillMarksFailed(t *testing.T) {
	h := newHarness()
	h.history.failOn = 3
	h.history.failErr = errors.New("connection reset")
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return(nil, errors.New("timeout"))

	res, err := newIngest(h, supplier, nil).Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrRunFailed)

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Contains(t, *rec.ErrorMessage, "timeout")
	assert.Equal(t, 4, h.history.saves)
}

func TestSyncHistoryUseCase_ListClampsLimit(t *testing.T) {
	h := newHarness()
	uc := NewSyncHistoryUC(h.history)
	for i := 0; i < 3; i++ {
		_, err := h.ledger.Open(context.Background(), domain.SyncTypeIngest)
		require.NoError(t, err)
	}

	list, err := uc.List(context.Background(), SyncHistoryFilter{})

	require.NoError(t, err)
	assert.Len(t, list, 3)
}
