package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestToSupplierOrderInput(t *testing.T) {
	in := ToSupplierOrderInput(ExternalOrder{
		ExternalOrderID: "EXT-1",
		CustomerName:    "홍길동",
		CustomerPhone:   "010-0000-0000",
		CustomerNote:    "문 앞",
		OrderMemo:       "선물",
		ShippingAddress: domain.ShippingAddress{Address1: "서울", Address2: "101호", PostalCode: "04524"},
		Items:           []ExternalOrderItem{{ProductID: "W1"}},
	})

	assert.Equal(t, defaultSenderName, in.Sender.Name)
	assert.Equal(t, "홍길동", in.Recipient.Name)
	assert.Equal(t, "04524", in.Recipient.DestinationAddress.PostalCode)
	assert.Equal(t, "EXT-1", in.Note)
	assert.Equal(t, "선물", in.SellerNote)
	assert.Equal(t, "문 앞", in.OrdererNote)
	require.Len(t, in.Products, 1)
	assert.Equal(t, "W1", in.Products[0].ItemKey)
	assert.Equal(t, 1, in.Products[0].Quantity)
	assert.NotNil(t, in.Products[0].OptionAttributes)
}

func TestCollectOrders_PartialFailure(t *testing.T) {
	h := newHarness()
	supplier := &supplierMock{}
	supplier.On("CreateOrder", mock.Anything, "ownerclan", "acc-1", mock.MatchedBy(func(o *SupplierOrderInput) bool { return o.Note == "EXT-1" })).
		Return([]OrderRef{{Key: "OC-1", Status: "placed"}, {Key: "OC-2", Status: "placed"}}, nil)

	orders := []ExternalOrder{
		{ExternalOrderID: "EXT-1", CustomerName: "홍길동", Items: []ExternalOrderItem{{ProductID: "W1", Quantity: 2, UnitPrice: 5000}}},
		{ExternalOrderID: "", Items: nil},
	}

	uc := NewCollectOrdersUC(supplier, h.ledger, h.clock, logger.Nop(), 0)
	res, err := uc.Execute(context.Background(), &CollectOrdersReq{SupplierID: "ownerclan", AccountID: "acc-1", ExternalOrders: orders})

	require.True(t, e.IsPartial(err))
	assert.Equal(t, "일부 주문 등록 실패: 1/2", err.Error())
	require.Len(t, res.Items, 1)

	got := res.Items[0]
	assert.Equal(t, "EXT-1", got.ExternalOrderID)
	assert.Len(t, got.SupplierOrders, 2)
	assert.Equal(t, "OC-1", got.Order.OrderKey)
	assert.Equal(t, int64(10000), got.Order.TotalAmount)
	assert.Contains(t, res.Result.Errors, "order_1")

	rec := h.record(t, res.HistoryID)
	assert.Equal(t, domain.SyncTypeIngest, rec.SyncType)
	assert.Equal(t, domain.SyncStatusFailed, rec.Status)
	supplier.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestCollectOrders_Empty(t *testing.T) {
	h := newHarness()
	uc := NewCollectOrdersUC(&supplierMock{}, h.ledger, h.clock, logger.Nop(), 0)

	res, err := uc.Execute(context.Background(), &CollectOrdersReq{SupplierID: "ownerclan", AccountID: "acc-1"})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
