package domain

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

// OrderStatus — состояние заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
	OrderStatusExchanged  OrderStatus = "exchanged"
)

// PaymentStatus — состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// OrderItem — строка заказа.
type OrderItem struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   int64
	TotalPrice  int64
	Options     map[string]string
}

func (i *OrderItem) CalculateTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// ShippingAddress — адрес получателя.
type ShippingAddress struct {
	Address1   string
	Address2   string
	PostalCode string
}

// ShippingInfo — сведения об отправке.
type ShippingInfo struct {
	TrackingNumber        *string
	ShippingCompany       *string
	ShippedAt             *time.Time
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
}

// Order — заказ, отражающий продажу на внешней площадке или заказ у поставщика.
type Order struct {
	ID                string
	SupplierID        string
	SupplierAccountID string
	OrderKey          string
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	Items             []OrderItem
	Subtotal          int64
	ShippingFee       int64
	TotalAmount       int64
	ShippingInfo      ShippingInfo
	CustomerName      *string
	CustomerPhone     *string
	ShippingAddress   *ShippingAddress
	OrdererNote       *string
	SellerNote        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewOrder(id, supplierID, supplierAccountID, orderKey string, now time.Time) *Order {
	return &Order{
		ID:                id,
		SupplierID:        supplierID,
		SupplierAccountID: supplierAccountID,
		OrderKey:          orderKey,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CalculateTotals пересчитывает сумму по строкам и итог с доставкой.
func (o *Order) CalculateTotals() {
	var subtotal int64
	for idx := range o.Items {
		subtotal += o.Items[idx].CalculateTotal()
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal + o.ShippingFee
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

func (o *Order) CanShip() bool {
	return o.Status == OrderStatusConfirmed && o.PaymentStatus == PaymentStatusPaid
}

func (o *Order) MarkShipped(trackingNumber, company string, now time.Time) error {
	if !o.CanShip() {
		return fmt.Errorf("%w: cannot ship order in status %s/%s", e.ErrOrderState, o.Status, o.PaymentStatus)
	}

	o.Status = OrderStatusShipped
	o.ShippingInfo.TrackingNumber = &trackingNumber
	o.ShippingInfo.ShippingCompany = &company
	o.ShippingInfo.ShippedAt = &now
	o.UpdatedAt = now
	return nil
}

func (o *Order) MarkDelivered(now time.Time) error {
	if o.Status != OrderStatusShipped {
		return fmt.Errorf("%w: cannot deliver order in status %s", e.ErrOrderState, o.Status)
	}

	o.Status = OrderStatusDelivered
	o.ShippingInfo.ActualDeliveryDate = &now
	o.UpdatedAt = now
	return nil
}

// Cancel отменяет заказ и записывает причину в заметку продавца.
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.CanCancel() {
		return fmt.Errorf("%w: cannot cancel order in status %s", e.ErrOrderState, o.Status)
	}

	note := "취소 사유: " + reason
	o.Status = OrderStatusCancelled
	o.SellerNote = &note
	o.UpdatedAt = now
	return nil
}

func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.CalculateTotals()
}

func (o *Order) RemoveItem(itemID string) {
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	o.CalculateTotals()
}

// ItemCount возвращает общее количество единиц товара в заказе.
func (o *Order) ItemCount() int {
	count := 0
	for idx := range o.Items {
		count += o.Items[idx].Quantity
	}
	return count
}
