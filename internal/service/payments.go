package service

import (
	"context"
	"fmt"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return nil, err
	}
	doc := s.snapshot()
	if orderID == "" {
		return doc.Payments, nil
	}
	out := []domain.Payment{}
	for _, p := range doc.Payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) AddPayment(ctx context.Context, orderID string, req domain.PaymentRequest) (domain.Payment, error) {
	if err := validation.Check(req); err != nil {
		return domain.Payment{}, err
	}

	var created domain.Payment
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, orderID)
		if err != nil {
			return nil, err
		}
		payment, err := s.receivePayment(doc, &order, req.Amount, req.Method)
		if err != nil {
			return nil, err
		}
		s.record(ctx, &order, "Paiement de %s ajouté (%s).", formatAmount(payment.Amount), payment.Method)
		created = payment
		return reducer.AddPayment{Payment: payment, Order: order}, nil
	})
	return created, err
}

// receivePayment books amount on order and returns the payment row.
func (s *Service) receivePayment(doc domain.Document, order *domain.Order, amount int64, method domain.PaymentMethod) (domain.Payment, error) {
	if order.PaymentStatus == domain.PaymentCancelled {
		return domain.Payment{}, ErrOrderCancelled
	}
	if balance := order.Total - order.PaidAmount; amount <= 0 || amount > balance {
		return domain.Payment{}, fmt.Errorf("%w: %s with %s outstanding", ErrPaymentOutOfRange, formatAmount(amount), formatAmount(balance))
	}
	payment := domain.Payment{
		ID:      s.newID("pay"),
		OrderID: order.ID,
		Date:    s.now(),
		Amount:  amount,
		Method:  method,
	}
	order.PaidAmount += amount
	order.PaymentStatus = domain.DerivePaymentStatus(order.PaidAmount, order.Total, doc.OrderHasRefund(order.ID))
	return payment, nil
}

func (s *Service) UpdatePayment(ctx context.Context, paymentID string, req domain.PaymentRequest) (domain.Payment, error) {
	if err := validation.Check(req); err != nil {
		return domain.Payment{}, err
	}

	var updated domain.Payment
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		payment, order, err := paymentWithOrder(doc, paymentID)
		if err != nil {
			return nil, err
		}

		paid := order.PaidAmount - payment.Amount + req.Amount
		if paid < 0 || (paid > order.Total && req.Amount > payment.Amount) {
			return nil, fmt.Errorf("%w: paid amount would become %s of %s", ErrPaymentOutOfRange, formatAmount(paid), formatAmount(order.Total))
		}

		s.record(ctx, &order, "Paiement modifié : %s (%s) → %s (%s).",
			formatAmount(payment.Amount), payment.Method, formatAmount(req.Amount), req.Method)
		payment.Amount = req.Amount
		payment.Method = req.Method
		order.PaidAmount = paid
		order.PaymentStatus = domain.DerivePaymentStatus(paid, order.Total, doc.OrderHasRefund(order.ID))

		updated = payment
		return reducer.UpdatePayment{Payment: payment, Order: order}, nil
	})
	return updated, err
}

func (s *Service) DeletePayment(ctx context.Context, paymentID string) error {
	return s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		payment, order, err := paymentWithOrder(doc, paymentID)
		if err != nil {
			return nil, err
		}

		paid := order.PaidAmount - payment.Amount
		if paid < 0 {
			return nil, fmt.Errorf("%w: paid amount would become %s", ErrPaymentOutOfRange, formatAmount(paid))
		}
		order.PaidAmount = paid
		order.PaymentStatus = domain.DerivePaymentStatus(paid, order.Total, doc.OrderHasRefund(order.ID))
		s.record(ctx, &order, "Paiement de %s supprimé (%s).", formatAmount(payment.Amount), payment.Method)
		return reducer.DeletePayment{PaymentID: payment.ID, Order: order}, nil
	})
}

// paymentWithOrder loads an editable payment and its order. Refund rows are
// owned by their return.
func paymentWithOrder(doc domain.Document, paymentID string) (domain.Payment, domain.Order, error) {
	payment, ok := doc.Payment(paymentID)
	if !ok {
		return domain.Payment{}, domain.Order{}, fmt.Errorf("payment %s: %w", paymentID, store.ErrNotFound)
	}
	if payment.IsRefund() {
		return domain.Payment{}, domain.Order{}, ErrRefundLocked
	}
	order, err := findOrder(doc, payment.OrderID)
	if err != nil {
		return domain.Payment{}, domain.Order{}, err
	}
	if order.PaymentStatus == domain.PaymentCancelled {
		return domain.Payment{}, domain.Order{}, ErrOrderCancelled
	}
	return payment, order, nil
}
