package service

import (
	"context"
	"fmt"
	"strings"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/report"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) ListPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	if err := s.authorize(ctx, domain.ModuleReplenishment); err != nil {
		return nil, err
	}
	return s.snapshot().PurchaseOrders, nil
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	if err := s.authorize(ctx, domain.ModuleReplenishment); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return findPurchaseOrder(s.snapshot(), id)
}

func (s *Service) AddPurchaseOrder(ctx context.Context, req domain.PurchaseOrderRequest) (domain.PurchaseOrder, error) {
	if err := validation.Check(req); err != nil {
		return domain.PurchaseOrder{}, err
	}

	var created domain.PurchaseOrder
	err := s.apply(ctx, domain.ModuleReplenishment, func(doc domain.Document) (reducer.Action, error) {
		items, err := purchaseOrderItems(doc, req)
		if err != nil {
			return nil, err
		}
		po := domain.PurchaseOrder{
			ID:         s.newID("po"),
			SupplierID: req.SupplierID,
			Date:       s.now(),
			Items:      items,
			Status:     domain.PurchaseOrderSent,
			Total:      purchaseOrderTotal(items),
			Notes:      strings.TrimSpace(req.Notes),
		}
		po.PaymentStatus = domain.DerivePurchaseOrderPaymentStatus(0, po.Total)

		created = po
		return reducer.AddPurchaseOrders{PurchaseOrders: []domain.PurchaseOrder{po}}, nil
	})
	return created, err
}

// UpdatePurchaseOrder edits lines until the first delivery arrives.
func (s *Service) UpdatePurchaseOrder(ctx context.Context, id string, req domain.PurchaseOrderRequest) (domain.PurchaseOrder, error) {
	if err := validation.Check(req); err != nil {
		return domain.PurchaseOrder{}, err
	}

	var updated domain.PurchaseOrder
	err := s.apply(ctx, domain.ModuleReplenishment, func(doc domain.Document) (reducer.Action, error) {
		po, err := findPurchaseOrder(doc, id)
		if err != nil {
			return nil, err
		}
		if po.HasReceipts() {
			return nil, ErrAlreadyReceived
		}
		items, err := purchaseOrderItems(doc, req)
		if err != nil {
			return nil, err
		}
		total := purchaseOrderTotal(items)
		if po.PaidAmount > total {
			return nil, fmt.Errorf("%w: %s already paid", ErrPaymentOutOfRange, formatAmount(po.PaidAmount))
		}

		po.SupplierID = req.SupplierID
		po.Items = items
		po.Total = total
		po.Notes = strings.TrimSpace(req.Notes)
		po.PaymentStatus = domain.DerivePurchaseOrderPaymentStatus(po.PaidAmount, po.Total)

		updated = po
		return reducer.UpdatePurchaseOrder{PurchaseOrder: po}, nil
	})
	return updated, err
}

// ReceivePurchaseOrderItems books delivered quantities and their stock in
// one action. Unknown variants are added to the product.
func (s *Service) ReceivePurchaseOrderItems(ctx context.Context, id string, req domain.ReceiveRequest) (domain.PurchaseOrder, error) {
	if err := validation.Check(req); err != nil {
		return domain.PurchaseOrder{}, err
	}

	var received domain.PurchaseOrder
	err := s.apply(ctx, domain.ModuleReplenishment, func(doc domain.Document) (reducer.Action, error) {
		po, err := findPurchaseOrder(doc, id)
		if err != nil {
			return nil, err
		}

		ledger := newStockLedger(doc)
		for _, line := range req.Lines {
			idx := receivableLine(po.Items, line)
			if idx < 0 {
				return nil, fmt.Errorf("line %s %s: %w", line.ProductID, line.Key(), store.ErrNotFound)
			}
			if line.Quantity > po.Items[idx].Remaining() {
				return nil, fmt.Errorf("%w: %s %s accepts %d more", ErrReceiveExceedsOrder, line.ProductID, line.Key(), po.Items[idx].Remaining())
			}
			if err := ledger.put(line.ProductID, line.Key(), line.Quantity); err != nil {
				return nil, err
			}
			po.Items[idx].QuantityReceived += line.Quantity
		}
		po.Status = domain.DerivePurchaseOrderStatus(po.Items, po.Status)

		received = po
		return reducer.ReceivePurchaseOrder{PurchaseOrder: po, Products: ledger.products()}, nil
	})
	return received, err
}

func (s *Service) AddSupplierPayment(ctx context.Context, purchaseOrderID string, req domain.SupplierPaymentRequest) (domain.SupplierPayment, error) {
	if err := validation.Check(req); err != nil {
		return domain.SupplierPayment{}, err
	}

	var created domain.SupplierPayment
	err := s.apply(ctx, domain.CanManageSuppliers, func(doc domain.Document) (reducer.Action, error) {
		po, err := findPurchaseOrder(doc, purchaseOrderID)
		if err != nil {
			return nil, err
		}
		if balance := po.Total - po.PaidAmount; req.Amount > balance {
			return nil, fmt.Errorf("%w: %s with %s outstanding", ErrPaymentOutOfRange, formatAmount(req.Amount), formatAmount(balance))
		}

		payment := domain.SupplierPayment{
			ID:              s.newID("spay"),
			PurchaseOrderID: po.ID,
			Date:            s.now(),
			Amount:          req.Amount,
			Method:          req.Method,
		}
		po.PaidAmount += payment.Amount
		po.PaymentStatus = domain.DerivePurchaseOrderPaymentStatus(po.PaidAmount, po.Total)

		created = payment
		return reducer.AddSupplierPayment{Payment: payment, PurchaseOrder: po}, nil
	})
	return created, err
}

func (s *Service) ListSupplierPayments(ctx context.Context, purchaseOrderID string) ([]domain.SupplierPayment, error) {
	if err := s.authorize(ctx, domain.ModuleReplenishment); err != nil {
		return nil, err
	}
	doc := s.snapshot()
	out := []domain.SupplierPayment{}
	for _, p := range doc.SupplierPayments {
		if purchaseOrderID == "" || p.PurchaseOrderID == purchaseOrderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) ReplenishmentSuggestions(ctx context.Context) ([]domain.SupplierReplenishment, error) {
	if err := s.authorize(ctx, domain.ModuleReplenishment); err != nil {
		return nil, err
	}
	return report.Replenishment(s.snapshot()), nil
}

// GenerateReplenishmentOrders turns the current suggestions into one
// purchase order per supplier. An empty SupplierIDs means every supplier.
func (s *Service) GenerateReplenishmentOrders(ctx context.Context, req domain.ReplenishmentRequest) ([]domain.PurchaseOrder, error) {
	wanted := make(map[string]bool, len(req.SupplierIDs))
	for _, id := range req.SupplierIDs {
		wanted[id] = true
	}

	var created []domain.PurchaseOrder
	err := s.apply(ctx, domain.ModuleReplenishment, func(doc domain.Document) (reducer.Action, error) {
		var orders []domain.PurchaseOrder
		for _, group := range report.Replenishment(doc) {
			if len(wanted) > 0 && !wanted[group.SupplierID] {
				continue
			}
			if _, ok := doc.Supplier(group.SupplierID); !ok {
				continue
			}
			items := make([]domain.PurchaseOrderItem, 0, len(group.Lines))
			for _, line := range group.Lines {
				items = append(items, domain.PurchaseOrderItem{
					ProductID:     line.ProductID,
					Quantity:      line.SuggestedQty,
					PurchasePrice: line.PurchasePrice,
					Size:          line.Size,
					Color:         line.Color,
				})
			}
			po := domain.PurchaseOrder{
				ID:         s.newID("po"),
				SupplierID: group.SupplierID,
				Date:       s.now(),
				Items:      items,
				Status:     domain.PurchaseOrderSent,
				Total:      purchaseOrderTotal(items),
				Notes:      strings.TrimSpace(req.Notes),
			}
			po.PaymentStatus = domain.DerivePurchaseOrderPaymentStatus(0, po.Total)
			orders = append(orders, po)
		}
		if len(orders) == 0 {
			return nil, ErrNothingToReplenish
		}

		created = orders
		return reducer.AddPurchaseOrders{PurchaseOrders: orders}, nil
	})
	return created, err
}

func purchaseOrderItems(doc domain.Document, req domain.PurchaseOrderRequest) ([]domain.PurchaseOrderItem, error) {
	if _, ok := doc.Supplier(req.SupplierID); !ok {
		return nil, fmt.Errorf("supplier %s: %w", req.SupplierID, store.ErrNotFound)
	}
	items := make([]domain.PurchaseOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		p, ok := doc.Product(item.ProductID)
		if !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, store.ErrNotFound)
		}
		key := item.Key()
		if key.IsZero() && len(p.Variants) > 0 {
			return nil, fmt.Errorf("%w: %s needs a size or color", ErrUnknownVariant, p.Name)
		}
		item.Size, item.Color = key.Size, key.Color
		item.QuantityReceived = 0
		items = append(items, item)
	}
	return items, nil
}

func purchaseOrderTotal(items []domain.PurchaseOrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.PurchasePrice * int64(item.Quantity)
	}
	return total
}

// receivableLine prefers a line with quantity left so duplicate lines fill
// in order.
func receivableLine(items []domain.PurchaseOrderItem, line domain.ReceiveLine) int {
	match := -1
	for i, item := range items {
		if item.ProductID != line.ProductID || item.Key() != line.Key() {
			continue
		}
		if item.Remaining() > 0 {
			return i
		}
		if match < 0 {
			match = i
		}
	}
	return match
}
