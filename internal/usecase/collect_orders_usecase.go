package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/google/uuid"
)

const (
	// DefaultOrderConcurrency — число одновременных регистраций заказов по умолчанию.
	DefaultOrderConcurrency = 3
	defaultSenderName       = "드랍십핑 셀러"
)

var collectOrdersMessages = stageMessages{partial: "일부 주문 등록 실패", failed: "주문 수집"}

// CollectOrdersUseCase передаёт заказы внешних площадок поставщику.
type CollectOrdersUseCase struct {
	supplier       SupplierPort
	ledger         *Ledger
	clock          Clock
	logger         logger.Logger
	maxConcurrency int
}

func NewCollectOrdersUC(supplier SupplierPort, ledger *Ledger, clock Clock, logger logger.Logger, maxConcurrency int) *CollectOrdersUseCase {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultOrderConcurrency
	}

	return &CollectOrdersUseCase{
		supplier:       supplier,
		ledger:         ledger,
		clock:          clock,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Execute регистрирует каждый внешний заказ у поставщика независимо от остальных.
// Запись журнала имеет тип ingest: сбор заказов считается разновидностью сбора данных.
func (u *CollectOrdersUseCase) Execute(ctx context.Context, req *CollectOrdersReq) (*StageResult[CollectedOrder], error) {
	const op = "CollectOrdersUseCase.Execute"

	h, err := u.ledger.Open(ctx, domain.SyncTypeIngest, WithSupplier(req.SupplierID))
	if err != nil {
		u.logger.Errorf(err, "%s: failed to open sync history", op)
		return NewStageResult[CollectedOrder]("", nil, nil), e.RunFailed(collectOrdersMessages.runError(err))
	}
	h.Details["kind"] = "orders"

	if len(req.ExternalOrders) == 0 {
		return finishStage[CollectedOrder](ctx, u.ledger, h, domain.NewSyncResult(), nil, collectOrdersMessages)
	}

	limit := req.MaxConcurrency
	if limit <= 0 {
		limit = u.maxConcurrency
	}

	outcomes := fanOut(ctx, req.ExternalOrders, limit, func(ctx context.Context, ext ExternalOrder) (CollectedOrder, error) {
		return u.register(ctx, req.SupplierID, req.AccountID, ext)
	})

	result := domain.NewSyncResult()
	collected := make([]CollectedOrder, 0, len(outcomes))
	for i, out := range outcomes {
		key := unitKey(req.ExternalOrders[i].ExternalOrderID, "order", i)

		if out.err != nil {
			u.logger.Warnf("%s: failed to register order %s: %v", op, key, out.err)
			result.AddFailure(key, out.err.Error())
			continue
		}

		result.AddSuccess(key)
		collected = append(collected, out.value)
	}

	return finishStage(ctx, u.ledger, h, result, collected, collectOrdersMessages)
}

func (u *CollectOrdersUseCase) register(ctx context.Context, supplierID, accountID string, ext ExternalOrder) (CollectedOrder, error) {
	order, err := u.toDomainOrder(supplierID, accountID, ext)
	if err != nil {
		return CollectedOrder{}, err
	}

	refs, err := u.supplier.CreateOrder(ctx, supplierID, accountID, ToSupplierOrderInput(ext))
	if err != nil {
		return CollectedOrder{}, err
	}

	if len(refs) > 0 {
		order.OrderKey = refs[0].Key
	}

	return CollectedOrder{
		ExternalOrderID: ext.ExternalOrderID,
		Order:           order,
		SupplierOrders:  refs,
		CreatedAt:       u.clock.Now(),
	}, nil
}

// toDomainOrder проверяет внешний заказ и строит по нему доменный заказ.
func (u *CollectOrdersUseCase) toDomainOrder(supplierID, accountID string, ext ExternalOrder) (*domain.Order, error) {
	if len(ext.Items) == 0 {
		return nil, e.ErrNoOrderLines
	}

	order := domain.NewOrder(uuid.NewString(), supplierID, accountID, "", u.clock.Now())
	for _, it := range ext.Items {
		if it.Quantity < 0 {
			return nil, fmt.Errorf("%w: product %s", e.ErrInvalidQuantity, it.ProductID)
		}

		options := make(map[string]string, len(it.Options))
		for _, opt := range it.Options {
			options[opt.Name] = opt.Value
		}

		line := domain.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    quantityOrDefault(it.Quantity),
			UnitPrice:   it.UnitPrice,
			Options:     options,
		}
		line.TotalPrice = line.CalculateTotal()
		order.AddItem(line)
	}

	if ext.CustomerName != "" {
		order.CustomerName = &ext.CustomerName
	}
	if ext.CustomerPhone != "" {
		order.CustomerPhone = &ext.CustomerPhone
	}
	if ext.CustomerNote != "" {
		order.OrdererNote = &ext.CustomerNote
	}
	if ext.OrderMemo != "" {
		order.SellerNote = &ext.OrderMemo
	}
	addr := ext.ShippingAddress
	order.ShippingAddress = &addr

	return order, nil
}

// ToSupplierOrderInput переводит внешний заказ в формат создания заказа у поставщика.
func ToSupplierOrderInput(ext ExternalOrder) *SupplierOrderInput {
	products := make([]OrderProductLine, 0, len(ext.Items))
	for _, it := range ext.Items {
		attrs := it.Options
		if attrs == nil {
			attrs = []OptionAttribute{}
		}

		products = append(products, OrderProductLine{
			ItemKey:          itemKeyForProduct(it.ProductID),
			Quantity:         quantityOrDefault(it.Quantity),
			OptionAttributes: attrs,
		})
	}

	senderName := ext.SellerName
	if senderName == "" {
		senderName = defaultSenderName
	}

	return &SupplierOrderInput{
		Sender: OrderSender{
			Name:        senderName,
			PhoneNumber: ext.SellerPhone,
			Email:       ext.SellerEmail,
		},
		Recipient: OrderRecipient{
			Name:        ext.CustomerName,
			PhoneNumber: ext.CustomerPhone,
			DestinationAddress: DestinationAddress{
				Addr1:      ext.ShippingAddress.Address1,
				Addr2:      ext.ShippingAddress.Address2,
				PostalCode: ext.ShippingAddress.PostalCode,
			},
		},
		Products:    products,
		Note:        ext.ExternalOrderID,
		SellerNote:  ext.OrderMemo,
		OrdererNote: ext.CustomerNote,
	}
}

// itemKeyForProduct сопоставляет ID товара площадки с ключом товара поставщика.
// TODO: читать соответствие из таблицы сопоставления товаров, когда она появится в схеме
func itemKeyForProduct(productID string) string {
	return productID
}

func quantityOrDefault(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
