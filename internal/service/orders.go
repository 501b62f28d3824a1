package service

import (
	"context"
	"fmt"
	"strings"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) ListOrders(ctx context.Context, includeArchived bool) ([]domain.Order, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return nil, err
	}
	doc := s.snapshot()
	out := make([]domain.Order, 0, len(doc.Orders))
	for _, order := range doc.Orders {
		if order.IsArchived && !includeArchived {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return domain.Order{}, err
	}
	return findOrder(s.snapshot(), id)
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	req.Items = normalizeOrderItems(req.Items)
	if len(req.Items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}
	if err := validation.Check(req); err != nil {
		return domain.Order{}, err
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = domain.PaymentPending
	}
	if req.PaymentStatus != domain.PaymentPaid && req.PaymentStatus != domain.PaymentPending {
		return domain.Order{}, fmt.Errorf("%w: new orders are %s or %s", ErrInvalidStatus, domain.PaymentPaid, domain.PaymentPending)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.MethodCash
	}

	var created domain.Order
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		if _, ok := doc.Client(req.ClientID); !ok {
			return nil, fmt.Errorf("client %s: %w", req.ClientID, store.ErrNotFound)
		}

		ledger := newStockLedger(doc)
		for _, item := range req.Items {
			if err := ledger.take(item.ProductID, item.Key(), item.Quantity); err != nil {
				return nil, err
			}
		}

		now := s.now()
		order := domain.Order{
			ID:                  s.newID("ord"),
			Date:                now,
			ClientID:            req.ClientID,
			Items:               req.Items,
			Discount:            req.Discount,
			Notes:               strings.TrimSpace(req.Notes),
			PaymentStatus:       domain.PaymentPending,
			DeliveryStatus:      domain.DeliveryPreparing,
			ModificationHistory: []domain.Modification{},
		}
		order.Total = order.Subtotal() - order.Discount
		if order.Total <= 0 {
			return nil, ErrInvalidTotal
		}
		s.record(ctx, &order, "Commande créée.")

		act := reducer.CreateOrder{Products: ledger.products()}
		if req.PaymentStatus == domain.PaymentPaid {
			payment := domain.Payment{
				ID:      s.newID("pay"),
				OrderID: order.ID,
				Date:    now,
				Amount:  order.Total,
				Method:  req.PaymentMethod,
			}
			order.PaidAmount = payment.Amount
			order.PaymentStatus = domain.PaymentPaid
			s.record(ctx, &order, "Commande marquée comme payée (%s, %s).", formatAmount(payment.Amount), payment.Method)
			act.Payment = &payment
		}

		act.Order = order
		created = order
		return act, nil
	})
	return created, err
}

func (s *Service) UpdateOrder(ctx context.Context, id string, req domain.UpdateOrderRequest) (domain.Order, error) {
	req.Items = normalizeOrderItems(req.Items)
	if len(req.Items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}
	if err := validation.Check(req); err != nil {
		return domain.Order{}, err
	}

	var updated domain.Order
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, id)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == domain.PaymentCancelled {
			return nil, ErrOrderCancelled
		}
		if len(doc.OrderReturns(order.ID)) > 0 {
			return nil, ErrOrderHasReturns
		}
		if _, ok := doc.Client(req.ClientID); !ok {
			return nil, fmt.Errorf("client %s: %w", req.ClientID, store.ErrNotFound)
		}

		before, keys := orderQuantities(order.Items)
		after, newKeys := orderQuantities(req.Items)
		for _, k := range newKeys {
			if _, seen := before[k]; !seen {
				keys = append(keys, k)
			}
		}

		ledger := newStockLedger(doc)
		for _, k := range keys {
			if err := ledger.adjust(k.productID, k.variant, before[k]-after[k]); err != nil {
				return nil, err
			}
		}

		order.ClientID = req.ClientID
		order.Items = req.Items
		order.Discount = req.Discount
		order.Notes = strings.TrimSpace(req.Notes)
		order.Total = order.Subtotal() - order.Discount
		if order.Total <= 0 {
			return nil, ErrInvalidTotal
		}
		order.PaymentStatus = domain.DerivePaymentStatus(order.PaidAmount, order.Total, doc.OrderHasRefund(order.ID))
		s.record(ctx, &order, "Commande modifiée (total %s).", formatAmount(order.Total))

		updated = order
		return reducer.UpdateOrder{Order: order, Products: ledger.products()}, nil
	})
	return updated, err
}

// UpdateOrderDeliveryStatus sets one of the manual delivery states. Livrée
// is refused while any item is oversold, and returned orders keep their
// return status.
func (s *Service) UpdateOrderDeliveryStatus(ctx context.Context, id string, status domain.DeliveryStatus) (domain.Order, error) {
	if !status.Manual() {
		return domain.Order{}, fmt.Errorf("%w: delivery status %q", ErrInvalidStatus, status)
	}

	var updated domain.Order
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, id)
		if err != nil {
			return nil, err
		}
		updated = order
		if order.PaymentStatus == domain.PaymentCancelled {
			return nil, ErrOrderCancelled
		}
		if len(doc.OrderReturns(order.ID)) > 0 {
			return nil, ErrOrderHasReturns
		}
		if order.DeliveryStatus == status {
			return nil, nil
		}
		if status == domain.DeliveryDelivered {
			if name, negative := negativeStock(doc, order.Items); negative {
				return nil, fmt.Errorf("%w: %s", ErrNegativeStock, name)
			}
		}

		s.record(ctx, &order, "Statut de livraison : %s → %s.", order.DeliveryStatus, status)
		order.DeliveryStatus = status
		updated = order
		return reducer.UpdateDeliveryStatus{Order: order}, nil
	})
	return updated, err
}

// CancelOrder restocks every item. Orders with money on them must have
// their payments removed first.
func (s *Service) CancelOrder(ctx context.Context, id string) (domain.Order, error) {
	var cancelled domain.Order
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, id)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == domain.PaymentCancelled {
			return nil, ErrOrderCancelled
		}
		if order.PaidAmount != 0 {
			return nil, ErrOrderHasPayments
		}
		if len(doc.OrderReturns(order.ID)) > 0 {
			return nil, ErrOrderHasReturns
		}

		ledger := newStockLedger(doc)
		for _, item := range order.Items {
			if err := ledger.put(item.ProductID, item.Key(), item.Quantity); err != nil {
				return nil, err
			}
		}

		order.PaymentStatus = domain.PaymentCancelled
		order.DeliveryStatus = domain.DeliveryCancelled
		s.record(ctx, &order, "Commande annulée.")
		cancelled = order
		return reducer.CancelOrder{Order: order, Products: ledger.products()}, nil
	})
	return cancelled, err
}

func (s *Service) CreateReturn(ctx context.Context, orderID string, req domain.ReturnRequest) (domain.ProductReturn, error) {
	if err := validation.Check(req); err != nil {
		return domain.ProductReturn{}, err
	}
	if req.RefundMethod == "" {
		req.RefundMethod = domain.MethodCash
	}

	var created domain.ProductReturn
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, orderID)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == domain.PaymentCancelled {
			return nil, ErrOrderCancelled
		}

		sold, _ := orderQuantities(order.Items)
		returned := make(map[lineKey]int)
		for _, r := range doc.OrderReturns(order.ID) {
			for _, item := range r.Items {
				returned[lineKey{productID: item.ProductID, variant: item.Key()}] += item.Quantity
			}
		}

		ledger := newStockLedger(doc)
		items := make([]domain.ReturnItem, 0, len(req.Items))
		var value int64
		for _, item := range req.Items {
			key := domain.NewVariantKey(item.Size, item.Color)
			item.Size, item.Color = key.Size, key.Color
			k := lineKey{productID: item.ProductID, variant: key}
			if returned[k]+item.Quantity > sold[k] {
				return nil, fmt.Errorf("%w: %s %s", ErrReturnExceedsOrder, item.ProductID, key)
			}
			returned[k] += item.Quantity
			if item.Price == 0 {
				item.Price = soldPrice(order.Items, k)
			}
			if err := ledger.put(item.ProductID, key, item.Quantity); err != nil {
				return nil, err
			}
			value += item.Price * int64(item.Quantity)
			items = append(items, item)
		}
		if req.RefundAmount > order.PaidAmount {
			return nil, fmt.Errorf("%w: refund %s exceeds paid %s", ErrPaymentOutOfRange, formatAmount(req.RefundAmount), formatAmount(order.PaidAmount))
		}

		now := s.now()
		ret := domain.ProductReturn{
			ID:           s.newID("ret"),
			OrderID:      order.ID,
			Date:         now,
			Items:        items,
			RefundAmount: req.RefundAmount,
			RefundMethod: req.RefundMethod,
			Notes:        strings.TrimSpace(req.Notes),
		}
		act := reducer.CreateReturn{Return: ret, Products: ledger.products()}
		if ret.RefundAmount > 0 {
			act.Refund = &domain.Payment{
				ID:      s.newID("pay"),
				OrderID: order.ID,
				Date:    now,
				Amount:  -ret.RefundAmount,
				Method:  ret.RefundMethod,
			}
		}

		order.Total -= value
		if order.Total < 0 {
			order.Total = 0
		}
		order.PaidAmount -= ret.RefundAmount
		refunded := ret.RefundAmount > 0 || doc.OrderHasRefund(order.ID)
		order.PaymentStatus = domain.DerivePaymentStatus(order.PaidAmount, order.Total, refunded)
		returnedQty := 0
		for _, n := range returned {
			returnedQty += n
		}
		order.DeliveryStatus = domain.DeriveReturnDeliveryStatus(returnedQty, order.Quantity(), order.DeliveryStatus)
		s.record(ctx, &order, "Retour enregistré : %d article(s), remboursement %s.", sumReturnQuantity(items), formatAmount(ret.RefundAmount))

		act.Order = order
		created = ret
		return act, nil
	})
	return created, err
}

func (s *Service) ListReturns(ctx context.Context, orderID string) ([]domain.ProductReturn, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return nil, err
	}
	doc := s.snapshot()
	if orderID == "" {
		return doc.Returns, nil
	}
	if _, err := findOrder(doc, orderID); err != nil {
		return nil, err
	}
	out := doc.OrderReturns(orderID)
	if out == nil {
		out = []domain.ProductReturn{}
	}
	return out, nil
}

// ArchiveOrder hides or shows an order in default listings and reports.
func (s *Service) ArchiveOrder(ctx context.Context, id string, archived bool) (domain.Order, error) {
	var updated domain.Order
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, id)
		if err != nil {
			return nil, err
		}
		updated = order
		if order.IsArchived == archived {
			return nil, nil
		}
		order.IsArchived = archived
		updated = order
		return reducer.SetOrderArchived{Order: order}, nil
	})
	return updated, err
}

func normalizeOrderItems(items []domain.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		key := item.Key()
		item.ProductID = strings.TrimSpace(item.ProductID)
		item.Size, item.Color = key.Size, key.Color
		out = append(out, item)
	}
	return out
}

func soldPrice(items []domain.OrderItem, k lineKey) int64 {
	for _, item := range items {
		if item.ProductID == k.productID && item.Key() == k.variant {
			return item.Price
		}
	}
	return 0
}

func sumReturnQuantity(items []domain.ReturnItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
