package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rawItems() []RawItem {
	return []RawItem{
		{ID: "W1", Title: "셔츠 화이트", Brand: "nike", Price: RawPrice{Original: 10000}, Images: []string{"https://img/1.jpg"}, Category: "c1"},
		{ID: "W2", Title: "", Brand: "nike", Price: RawPrice{Original: 20000}},
		{ID: "W3", Title: "노트북 파우치", Brand: "samsung", Price: RawPrice{Original: 5000},
			Options: []RawOption{{Name: "color", Value: "red", StockQuantity: 3}, {Name: "color", Value: "blue", StockQuantity: 4}}},
	}
}

func newIngest(h *harness, supplier SupplierPort, snaps SnapshotInfra) *IngestUseCase {
	return NewIngestUC(supplier, h.items, nil, h.cache, snaps, h.ledger, h.clock, logger.Nop(), 0)
}

func TestIngest_PartialFailure(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return(rawItems(), nil)
	snaps := &fakeSnapshots{}

	res, err := newIngest(h, supplier, snaps).Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.Error(t, err)
	assert.True(t, e.IsPartial(err))
	assert.Equal(t, "일부 상품 수집 실패: 1/3", err.Error())

	require.Len(t, res.Items, 2)
	assert.Equal(t, "W1", res.Items[0].ID)
	assert.Equal(t, "W3", res.Items[1].ID)
	assert.Equal(t, 2, res.Result.SuccessCount)
	assert.Equal(t, 1, res.Result.FailureCount)
	assert.Equal(t, 3, res.Result.TotalCount)
	assert.Contains(t, res.Result.Errors, "W2")

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	assert.Equal(t, domain.SyncTypeIngest, rec.SyncType)
	assert.Equal(t, "ownerclan", *rec.SupplierID)
	assert.Equal(t, "raw/"+res.HistoryID+".json", rec.Details["snapshot_key"])
	assert.Equal(t, []domain.SyncStatus{domain.SyncStatusPending, domain.SyncStatusInProgress, domain.SyncStatusFailed}, h.history.statuses)

	assert.Len(t, h.items.items, 2)
	assert.Equal(t, 7, h.items.items["W3"].StockQuantity)
	assert.ElementsMatch(t, []string{"W1", "W3"}, h.cache.deleted)
	assert.Len(t, h.outbox.events, 1)
}

func TestIngest_IdempotentRerun(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return(rawItems(), nil)
	uc := newIngest(h, supplier, &fakeSnapshots{})

	first, _ := uc.Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})
	second, _ := uc.Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	assert.Len(t, h.items.items, 2)
	assert.Equal(t, first.Items[0].HashKey, second.Items[0].HashKey)
	assert.Equal(t, first.Items[1].HashKey, h.items.items["W3"].HashKey)
	assert.NotEqual(t, first.HistoryID, second.HistoryID)
}

func TestIngest_FetchErrorFailsRun(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string{"K1"}).Return(nil, errors.New("timeout"))
	snaps := &fakeSnapshots{}

	res, err := newIngest(h, supplier, snaps).Execute(context.Background(),
		&IngestReq{SupplierID: "ownerclan", AccountID: "acc-1", ItemKeys: []string{"K1"}})

	require.ErrorIs(t, err, e.ErrRunFailed)
	assert.Equal(t, "상품 수집 중 오류 발생: timeout", err.Error())
	assert.Empty(t, res.Items)
	assert.Nil(t, res.Result)

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	assert.Equal(t, "상품 수집 중 오류 발생: timeout", *rec.ErrorMessage)
	assert.Nil(t, rec.Result)
	assert.Zero(t, snaps.calls)
}

func TestIngest_EmptyFetchSucceeds(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return([]RawItem{}, nil)

	res, err := newIngest(h, supplier, &fakeSnapshots{}).Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Result.TotalCount)
	// пустой результат не считается успешным
	assert.Equal(t, domain.SyncStatusFailed, h.record(t, res.HistoryID).Status)
}

func TestIngest_SaveFailureIsPerItem(t *testing.T) {
	h := newHarness()
	h.items.saveErr["W1"] = errors.New("db down")
	supplier := &supplierMock{}
	supplier.On("FetchItems", mock.Anything, "ownerclan", "acc-1", []string(nil)).Return(rawItems(), nil)

	res, err := newIngest(h, supplier, &fakeSnapshots{}).Execute(context.Background(), &IngestReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.True(t, e.IsPartial(err))
	assert.Equal(t, "일부 상품 수집 실패: 2/3", err.Error())
	require.Len(t, res.Items, 1)
	assert.Equal(t, "W3", res.Items[0].ID)
	assert.Equal(t, "db down", res.Result.Errors["W1"])
}

func TestIngest_SyncCategories(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("GetCategories", mock.Anything, "ownerclan", "acc-1").
		Return([]domain.Category{*domain.NewCategory("1", "", "의류", nil, 1)}, nil)
	categories := &memCategoryRepo{}
	uc := NewIngestUC(supplier, h.items, categories, h.cache, &fakeSnapshots{}, h.ledger, h.clock, logger.Nop(), 0)

	got, err := uc.SyncCategories(context.Background(), "ownerclan", "acc-1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ownerclan", categories.saved[0].SupplierID)
}

type memCategoryRepo struct {
	saved []domain.Category
}

func (r *memCategoryRepo) Upsert(_ context.Context, categories []domain.Category) error {
	r.saved = append(r.saved, categories...)
	return nil
}

func (r *memCategoryRepo) ListBySupplier(_ context.Context, supplierID string) ([]domain.Category, error) {
	return r.saved, nil
}
