package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOutboxRepo struct {
	batches   [][]*usecase.OutboxEvent
	processed []int64
	failed    []int64
}

func (r *stubOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return event, nil
}

func (r *stubOutboxRepo) GetAndMarkAsProcessing(_ context.Context, _ int) ([]*usecase.OutboxEvent, error) {
	if len(r.batches) == 0 {
		return nil, nil
	}
	batch := r.batches[0]
	r.batches = r.batches[1:]
	return batch, nil
}

func (r *stubOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	r.processed = append(r.processed, id)
	return nil
}

func (r *stubOutboxRepo) MarkAsFailed(_ context.Context, id int64) error {
	r.failed = append(r.failed, id)
	return nil
}

type stubProducer struct {
	sent []*usecase.WriteRawMessageReq
	errs map[string]error
}

func (p *stubProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if err, ok := p.errs[req.Key]; ok {
		return err
	}
	p.sent = append(p.sent, req)
	return nil
}

func event(id int64, aggregateID string) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          id,
		EventID:     aggregateID + "-evt",
		EventType:   usecase.EventTypeSyncFinished,
		AggregateID: aggregateID,
		Payload:     []byte("payload"),
		Status:      usecase.Processing,
	}
}

func TestOutboxWorker_ProcessBatch(t *testing.T) {
	repo := &stubOutboxRepo{batches: [][]*usecase.OutboxEvent{{
		event(1, "h-1"),
		event(2, "h-2"),
		event(3, "h-3"),
	}}}
	producer := &stubProducer{errs: map[string]error{
		"h-2": errors.New("dial tcp: connection refused"),
		"h-3": errors.New("message too large"),
	}}
	w := NewOutboxWorker(repo, logger.Nop(), producer, "")

	hasMore, err := w.processBatch(context.Background())

	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Equal(t, []int64{1}, repo.processed)
	assert.Equal(t, []int64{3}, repo.failed)
	require.Len(t, producer.sent, 1)
	assert.Equal(t, "h-1", producer.sent[0].Key)
	assert.Equal(t, usecase.EventTypeSyncFinished, producer.sent[0].EventType)
}

func TestOutboxWorker_ProcessBatchStopsWhenBrokerDown(t *testing.T) {
	repo := &stubOutboxRepo{batches: [][]*usecase.OutboxEvent{{event(1, "h-1")}, {event(2, "h-2")}}}
	producer := &stubProducer{errs: map[string]error{
		"h-1": errors.New("i/o timeout"),
	}}
	w := NewOutboxWorker(repo, logger.Nop(), producer, "")

	w.drain(context.Background())

	assert.Empty(t, repo.processed)
	assert.Empty(t, repo.failed)
	assert.Len(t, repo.batches, 1)
}

func TestOutboxWorker_DrainUntilEmpty(t *testing.T) {
	repo := &stubOutboxRepo{batches: [][]*usecase.OutboxEvent{{event(1, "h-1")}, {event(2, "h-2")}}}
	w := NewOutboxWorker(repo, logger.Nop(), &stubProducer{}, "")

	w.drain(context.Background())

	assert.Equal(t, []int64{1, 2}, repo.processed)
	assert.Empty(t, repo.batches)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("Broker Not Available")))
	assert.True(t, isRetryableError(errors.New("write: broken pipe")))
	assert.False(t, isRetryableError(errors.New("invalid message")))
}

func TestToMessage(t *testing.T) {
	msg := toMessage(usecase.NewWriteRawMessageReq("h-1", usecase.EventTypeSyncFinished, []byte("x")))

	assert.Equal(t, []byte("h-1"), msg.Key)
	assert.Equal(t, []byte("x"), msg.Value)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, headerEventType, msg.Headers[0].Key)
}
