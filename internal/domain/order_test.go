package domain

import (
	"testing"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder(t *testing.T) {
	t.Run("totals follow items", func(t *testing.T) {
		o := NewOrder("o1", "ownerclan", "acc", "K1", testNow)
		o.ShippingFee = 3000
		o.AddItem(OrderItem{ID: "l1", Quantity: 2, UnitPrice: 5000})
		o.AddItem(OrderItem{ID: "l2", Quantity: 1, UnitPrice: 1000})

		assert.Equal(t, int64(11000), o.Subtotal)
		assert.Equal(t, int64(14000), o.TotalAmount)
		assert.Equal(t, 3, o.ItemCount())

		o.RemoveItem("l1")
		assert.Equal(t, int64(1000), o.Subtotal)
		assert.Equal(t, 1, o.ItemCount())
	})

	t.Run("shipping requires confirmed and paid", func(t *testing.T) {
		o := NewOrder("o1", "ownerclan", "acc", "K1", testNow)
		assert.ErrorIs(t, o.MarkShipped("T1", "CJ", testNow), e.ErrOrderState)

		o.Status = OrderStatusConfirmed
		o.PaymentStatus = PaymentStatusPaid
		require.NoError(t, o.MarkShipped("T1", "CJ", testNow))
		require.NoError(t, o.MarkDelivered(testNow))

		assert.Equal(t, OrderStatusDelivered, o.Status)
		assert.ErrorIs(t, o.Cancel("late", testNow), e.ErrOrderState)
	})

	t.Run("cancel writes reason", func(t *testing.T) {
		o := NewOrder("o1", "ownerclan", "acc", "K1", testNow)
		require.NoError(t, o.Cancel("품절", testNow))

		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, "취소 사유: 품절", *o.SellerNote)
	})
}
