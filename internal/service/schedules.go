package service

import (
	"context"
	"fmt"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/schedule"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) GetPaymentSchedule(ctx context.Context, orderID string) (domain.PaymentSchedule, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return domain.PaymentSchedule{}, err
	}
	doc := s.snapshot()
	order, err := findOrder(doc, orderID)
	if err != nil {
		return domain.PaymentSchedule{}, err
	}
	sched, ok := doc.ScheduleForOrder(order)
	if !ok {
		return domain.PaymentSchedule{}, fmt.Errorf("payment schedule for order %s: %w", orderID, store.ErrNotFound)
	}
	return sched, nil
}

// CreatePaymentSchedule attaches a schedule to the order. An existing
// schedule is replaced in place and keeps its id.
func (s *Service) CreatePaymentSchedule(ctx context.Context, orderID string, req domain.ScheduleRequest) (domain.PaymentSchedule, error) {
	return s.savePaymentSchedule(ctx, orderID, req, false)
}

func (s *Service) UpdatePaymentSchedule(ctx context.Context, orderID string, req domain.ScheduleRequest) (domain.PaymentSchedule, error) {
	return s.savePaymentSchedule(ctx, orderID, req, true)
}

func (s *Service) savePaymentSchedule(ctx context.Context, orderID string, req domain.ScheduleRequest, mustExist bool) (domain.PaymentSchedule, error) {
	if err := validation.Check(req); err != nil {
		return domain.PaymentSchedule{}, err
	}

	var saved domain.PaymentSchedule
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, orderID)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == domain.PaymentCancelled {
			return nil, ErrOrderCancelled
		}

		existing, exists := doc.ScheduleForOrder(order)
		if mustExist && !exists {
			return nil, fmt.Errorf("payment schedule for order %s: %w", orderID, store.ErrNotFound)
		}
		installments, err := s.buildInstallments(order, req)
		if err != nil {
			return nil, err
		}

		sched := domain.PaymentSchedule{ID: s.newID("sch"), OrderID: order.ID, Installments: installments}
		verb := "créé"
		if exists {
			sched.ID = existing.ID
			verb = "modifié"
		}
		order.PaymentScheduleID = sched.ID
		s.record(ctx, &order, "Échéancier %s (%d échéance(s)).", verb, len(installments))

		saved = sched
		return reducer.SavePaymentSchedule{Schedule: sched, Order: order}, nil
	})
	return saved, err
}

// buildInstallments resolves amounts and formulas. Every installment starts
// unpaid whatever the caller sent.
func (s *Service) buildInstallments(order domain.Order, req domain.ScheduleRequest) ([]domain.Installment, error) {
	remaining := order.Total - order.PaidAmount

	if len(req.Installments) == 0 {
		if req.Count <= 0 {
			return nil, fmt.Errorf("%w: no installments", ErrInvalidInstallment)
		}
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: nothing left to pay", ErrPaymentOutOfRange)
		}
		first := req.FirstDueDate
		if first.IsZero() {
			first = s.now().AddDate(0, 1, 0)
		}
		amounts := schedule.Even(remaining, req.Count)
		dates := schedule.Monthly(first, req.Count)
		out := make([]domain.Installment, req.Count)
		for i := range out {
			out[i] = domain.Installment{DueDate: dates[i], Amount: amounts[i], Status: domain.InstallmentPending}
		}
		return out, nil
	}

	out := make([]domain.Installment, 0, len(req.Installments))
	var sum int64
	formulas, lastFormula := 0, -1
	for i, in := range req.Installments {
		amount := in.Amount
		if amount == 0 && in.Formula != "" {
			formulas++
			lastFormula = i
			evaluated, err := schedule.Evaluate(in.Formula, schedule.Params{
				Total:     order.Total,
				Paid:      order.PaidAmount,
				Remaining: remaining,
				Count:     len(req.Installments),
				Index:     i,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInstallment, err)
			}
			amount = evaluated
		}
		if amount <= 0 {
			return nil, fmt.Errorf("%w: installment %d has no amount", ErrInvalidInstallment, i+1)
		}
		if in.DueDate.IsZero() {
			return nil, fmt.Errorf("%w: installment %d has no due date", ErrInvalidInstallment, i+1)
		}
		out = append(out, domain.Installment{DueDate: in.DueDate.UTC(), Amount: amount, Status: domain.InstallmentPending})
		sum += amount
	}

	// Each rounded formula may add half a unit; the last formula absorbs it.
	if over := sum - remaining; over > 0 && lastFormula >= 0 && 2*over <= int64(formulas) && out[lastFormula].Amount > over {
		out[lastFormula].Amount -= over
		sum -= over
	}
	if sum > remaining {
		return nil, fmt.Errorf("%w: installments total %s but %s is left to pay", ErrInvalidInstallment, formatAmount(sum), formatAmount(remaining))
	}
	return out, nil
}

// MarkInstallmentAsPaid records the payment, flips the installment and
// recomputes the order in one action. Paying a paid installment does nothing.
func (s *Service) MarkInstallmentAsPaid(ctx context.Context, orderID string, index int, method domain.PaymentMethod) (domain.PaymentSchedule, error) {
	if method == "" {
		method = domain.MethodCash
	}
	if !method.Valid() {
		return domain.PaymentSchedule{}, fmt.Errorf("%w: payment method %q", store.ErrInvalidTransaction, method)
	}

	var result domain.PaymentSchedule
	err := s.apply(ctx, domain.ModuleOrders, func(doc domain.Document) (reducer.Action, error) {
		order, err := findOrder(doc, orderID)
		if err != nil {
			return nil, err
		}
		sched, ok := doc.ScheduleForOrder(order)
		if !ok {
			return nil, fmt.Errorf("payment schedule for order %s: %w", orderID, store.ErrNotFound)
		}
		sched = sched.Clone()
		result = sched
		if index < 0 || index >= len(sched.Installments) {
			return nil, fmt.Errorf("installment %d: %w", index, store.ErrNotFound)
		}
		if sched.Installments[index].Status == domain.InstallmentPaid {
			return nil, nil
		}

		payment, err := s.receivePayment(doc, &order, sched.Installments[index].Amount, method)
		if err != nil {
			return nil, err
		}
		sched.Installments[index].Status = domain.InstallmentPaid
		s.record(ctx, &order, "Échéance %d payée (%s, %s).", index+1, formatAmount(payment.Amount), payment.Method)

		result = sched
		return reducer.MarkInstallmentPaid{Schedule: sched, Payment: payment, Order: order}, nil
	})
	return result, err
}
