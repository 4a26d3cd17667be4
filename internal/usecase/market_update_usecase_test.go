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

func newMarketUpdate(h *harness, market MarketPort) *MarketUpdateUseCase {
	return NewMarketUpdateUC(market, h.items, h.accounts, h.cache, h.ledger, h.clock, logger.Nop(), 0, 2)
}

func TestMarketUpdate_PushesFinalPrices(t *testing.T) {
	clock := newFakeClock()
	h := newHarness(marketAccount(clock))
	seedItem(h, "W1", "셔츠", "NIKE", "의류", 0.3)
	seedItem(h, "W2", "바지", "NIKE", "의류", 0.2)
	market := &marketMock{}
	market.On("UpdatePrice", mock.Anything, mock.Anything, "P-1", int64(13000)).Return(true, nil)
	market.On("UpdatePrice", mock.Anything, mock.Anything, "P-2", int64(12000)).Return(true, nil)

	res, err := newMarketUpdate(h, market).Execute(context.Background(), &MarketUpdateReq{
		MarketType:  "coupang",
		AccountName: "main",
		Kind:        MarketUpdatePrice,
		Targets:     []MarketTarget{{ItemID: "W1", ProductID: "P-1"}, {ItemID: "W2", ProductID: "P-2"}},
	})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(13000), res.Items[0].Value)
	assert.Equal(t, "P-2", res.Items[1].ProductID)
	assert.NotNil(t, h.items.items["W1"].LastSyncedAt)

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncTypePriceUpdate, rec.SyncType)
	assert.Equal(t, domain.SyncStatusSuccess, rec.Status)
	assert.Equal(t, int64(1), h.accounts.accounts["m-1"].SuccessfulRequests)
	market.AssertExpectations(t)
}

func TestMarketUpdate_StockPartialFailure(t *testing.T) {
	clock := newFakeClock()
	h := newHarness(marketAccount(clock))
	seedItem(h, "W1", "셔츠", "NIKE", "의류", 0.3)
	seedItem(h, "W2", "바지", "NIKE", "의류", 0.3)
	inactive := h.items.items["W2"]
	inactive.StockQuantity = 9
	inactive.Deactivate()
	h.items.items["W2"] = inactive

	market := &marketMock{}
	market.On("UpdateInventory", mock.Anything, mock.Anything, "P-1", 0).Return(false, nil)
	market.On("UpdateInventory", mock.Anything, mock.Anything, "P-2", 0).Return(true, nil)

	res, err := newMarketUpdate(h, market).Execute(context.Background(), &MarketUpdateReq{
		MarketType:  "coupang",
		AccountName: "main",
		Kind:        MarketUpdateStock,
		Targets: []MarketTarget{
			{ItemID: "W1", ProductID: "P-1"},
			{ItemID: "W2", ProductID: "P-2"},
			{ItemID: "missing", ProductID: "P-3"},
		},
	})

	require.True(t, e.IsPartial(err))
	assert.Equal(t, "일부 재고 업데이트 실패: 2/3", err.Error())
	require.Len(t, res.Items, 3)
	assert.False(t, res.Items[0].Success)
	assert.True(t, res.Items[1].Success)
	assert.Zero(t, res.Items[1].Value)
	assert.Contains(t, res.Result.Errors["W1"], e.ErrMarketRejected.Error())
	assert.Contains(t, res.Result.Errors, "missing")

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncTypeStockUpdate, rec.SyncType)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	assert.Equal(t, []string{"W2"}, h.cache.deleted)
	assert.Equal(t, int64(1), h.accounts.accounts["m-1"].FailedRequests)
}

func TestMarketUpdate_TransportErrorIsPerItem(t *testing.T) {
	clock := newFakeClock()
	h := newHarness(marketAccount(clock))
	seedItem(h, "W1", "셔츠", "NIKE", "의류", 0.3)
	market := &marketMock{}
	market.On("UpdatePrice", mock.Anything, mock.Anything, "P-1", mock.Anything).Return(false, errors.New("timeout"))

	res, err := newMarketUpdate(h, market).Execute(context.Background(), &MarketUpdateReq{
		MarketType: "coupang", AccountName: "main", Kind: MarketUpdatePrice,
		Targets: []MarketTarget{{ItemID: "W1", ProductID: "P-1"}},
	})

	require.True(t, e.IsPartial(err))
	assert.Equal(t, "timeout", res.Result.Errors["W1"])
	assert.Nil(t, h.items.items["W1"].LastSyncedAt)
}

func TestMarketUpdate_UnhealthyAccountFailsRun(t *testing.T) {
	clock := newFakeClock()
	acc := marketAccount(clock)
	acc.Suspend(clock.Now())
	h := newHarness(acc)
	market := &marketMock{}

	res, err := newMarketUpdate(h, market).Execute(context.Background(), &MarketUpdateReq{
		MarketType: "coupang", AccountName: "main", Kind: MarketUpdateStock,
		Targets: []MarketTarget{{ItemID: "W1", ProductID: "P-1"}},
	})

	require.ErrorIs(t, err, e.ErrRunFailed)
	assert.Equal(t, "마켓 계정 상태가 양호하지 않습니다: main", err.Error())
	assert.Equal(t, domain.SyncStatusFailed, h.record(t, res.HistoryID).Status)
	market.AssertNotCalled(t, "UpdateInventory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarketUpdate_UnknownKind(t *testing.T) {
	h := newHarness()

	res, err := newMarketUpdate(h, &marketMock{}).Execute(context.Background(), &MarketUpdateReq{Kind: "title"})

	require.ErrorIs(t, err, e.ErrRunFailed)
	assert.Contains(t, err.Error(), e.ErrUnknownUpdateKind.Error())
	assert.Empty(t, res.HistoryID)
	assert.Empty(t, h.history.records)
}
