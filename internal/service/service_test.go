package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aminashop/backend/internal/cache"
	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/report"
	"aminashop/backend/internal/state"
)

const testAdminPIN = "482913"

func newTestService(t *testing.T) (*Service, *state.Store) {
	t.Helper()
	doc, err := state.SeedDocument(state.SeedOptions{AdminPIN: testAdminPIN, Demo: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	st := state.New(doc)
	return New(st, report.NewEngine(cache.NoopReportCache{}, 5*time.Second)), st
}

func productByID(t *testing.T, st *state.Store, id string) domain.Product {
	t.Helper()
	doc, _ := st.Snapshot()
	p, ok := doc.Product(id)
	if !ok {
		t.Fatalf("product %s missing", id)
	}
	return p
}

func assertLedgersConsistent(t *testing.T, st *state.Store) {
	t.Helper()
	doc, _ := st.Snapshot()
	for _, o := range doc.Orders {
		if got := doc.OrderPaymentsTotal(o.ID); got != o.PaidAmount {
			t.Fatalf("order %s paidAmount %d but payments sum to %d", o.ID, o.PaidAmount, got)
		}
	}
	for _, p := range doc.Products {
		if len(p.Variants) > 0 && p.Stock != p.VariantTotal() {
			t.Fatalf("product %s stock %d does not match variants %d", p.ID, p.Stock, p.VariantTotal())
		}
	}
}

func TestOrderPaymentCancelScenario(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	stockBefore := productByID(t, st, "prod-2").Stock

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID:      "cli-1",
		Items:         []domain.OrderItem{{ProductID: "prod-2", Quantity: 3, Price: 1000}},
		PaymentStatus: domain.PaymentPending,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Total != 3000 || order.PaidAmount != 0 || order.PaymentStatus != domain.PaymentPending {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.DeliveryStatus != domain.DeliveryPreparing {
		t.Fatalf("expected %s, got %s", domain.DeliveryPreparing, order.DeliveryStatus)
	}
	if got := productByID(t, st, "prod-2").Stock; got != stockBefore-3 {
		t.Fatalf("expected stock %d, got %d", stockBefore-3, got)
	}

	payment, err := svc.AddPayment(ctx, order.ID, domain.PaymentRequest{Amount: 3000, Method: domain.MethodMobileMoney})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	paid, _ := svc.GetOrder(ctx, order.ID)
	if paid.PaidAmount != 3000 || paid.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected paid order, got %d %s", paid.PaidAmount, paid.PaymentStatus)
	}

	version := st.Version()
	if _, err := svc.CancelOrder(ctx, order.ID); !errors.Is(err, ErrOrderHasPayments) {
		t.Fatalf("expected cancel to be rejected, got %v", err)
	}
	if st.Version() != version {
		t.Fatalf("rejected cancel must not change state")
	}

	if err := svc.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	unpaid, _ := svc.GetOrder(ctx, order.ID)
	if unpaid.PaidAmount != 0 || unpaid.PaymentStatus != domain.PaymentPending {
		t.Fatalf("expected unpaid order, got %d %s", unpaid.PaidAmount, unpaid.PaymentStatus)
	}

	cancelled, err := svc.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.PaymentStatus != domain.PaymentCancelled || cancelled.DeliveryStatus != domain.DeliveryCancelled {
		t.Fatalf("expected cancelled statuses, got %s / %s", cancelled.PaymentStatus, cancelled.DeliveryStatus)
	}
	if got := productByID(t, st, "prod-2").Stock; got != stockBefore {
		t.Fatalf("expected stock restored to %d, got %d", stockBefore, got)
	}
	if len(cancelled.ModificationHistory) < 4 {
		t.Fatalf("expected history entries, got %+v", cancelled.ModificationHistory)
	}
	assertLedgersConsistent(t, st)
}

func TestPurchaseOrderReceiptScenario(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	stockBefore := productByID(t, st, "prod-2").Stock

	po, err := svc.AddPurchaseOrder(ctx, domain.PurchaseOrderRequest{
		SupplierID: "sup-2",
		Items:      []domain.PurchaseOrderItem{{ProductID: "prod-2", Quantity: 10, PurchasePrice: 12000}},
	})
	if err != nil {
		t.Fatalf("add purchase order: %v", err)
	}
	if po.Status != domain.PurchaseOrderSent || po.Total != 120000 || po.PaymentStatus != domain.PaymentPending {
		t.Fatalf("unexpected purchase order %+v", po)
	}

	po, err = svc.ReceivePurchaseOrderItems(ctx, po.ID, domain.ReceiveRequest{Lines: []domain.ReceiveLine{{ProductID: "prod-2", Quantity: 4}}})
	if err != nil {
		t.Fatalf("receive 4: %v", err)
	}
	if po.Items[0].QuantityReceived != 4 || po.Status != domain.PurchaseOrderPartiallyReceived {
		t.Fatalf("expected partial receipt, got %+v", po)
	}
	if got := productByID(t, st, "prod-2").Stock; got != stockBefore+4 {
		t.Fatalf("expected stock %d, got %d", stockBefore+4, got)
	}

	if _, err := svc.UpdatePurchaseOrder(ctx, po.ID, domain.PurchaseOrderRequest{
		SupplierID: "sup-2",
		Items:      []domain.PurchaseOrderItem{{ProductID: "prod-2", Quantity: 20, PurchasePrice: 12000}},
	}); !errors.Is(err, ErrAlreadyReceived) {
		t.Fatalf("expected edit after receipt to fail, got %v", err)
	}

	po, err = svc.ReceivePurchaseOrderItems(ctx, po.ID, domain.ReceiveRequest{Lines: []domain.ReceiveLine{{ProductID: "prod-2", Quantity: 6}}})
	if err != nil {
		t.Fatalf("receive 6: %v", err)
	}
	if po.Status != domain.PurchaseOrderReceived {
		t.Fatalf("expected full receipt, got %s", po.Status)
	}
	if got := productByID(t, st, "prod-2").Stock; got != stockBefore+10 {
		t.Fatalf("expected stock %d, got %d", stockBefore+10, got)
	}

	if _, err := svc.ReceivePurchaseOrderItems(ctx, po.ID, domain.ReceiveRequest{Lines: []domain.ReceiveLine{{ProductID: "prod-2", Quantity: 1}}}); !errors.Is(err, ErrReceiveExceedsOrder) {
		t.Fatalf("expected over-receipt to fail, got %v", err)
	}

	if _, err := svc.AddSupplierPayment(ctx, po.ID, domain.SupplierPaymentRequest{Amount: 120000, Method: domain.SupplierMethodTransfer}); err != nil {
		t.Fatalf("supplier payment: %v", err)
	}
	if _, err := svc.AddSupplierPayment(ctx, po.ID, domain.SupplierPaymentRequest{Amount: 1, Method: domain.SupplierMethodCash}); !errors.Is(err, ErrPaymentOutOfRange) {
		t.Fatalf("expected overpayment to fail, got %v", err)
	}
	paid, _ := svc.GetPurchaseOrder(ctx, po.ID)
	if paid.PaymentStatus != domain.PaymentPaid || paid.PaidAmount != 120000 {
		t.Fatalf("expected paid purchase order, got %+v", paid)
	}
}

func TestReceiveAddsUnknownVariant(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	po, err := svc.AddPurchaseOrder(ctx, domain.PurchaseOrderRequest{
		SupplierID: "sup-2",
		Items:      []domain.PurchaseOrderItem{{ProductID: "prod-3", Quantity: 5, PurchasePrice: 5000, Size: "42"}},
	})
	if err != nil {
		t.Fatalf("add purchase order: %v", err)
	}
	if _, err := svc.ReceivePurchaseOrderItems(ctx, po.ID, domain.ReceiveRequest{Lines: []domain.ReceiveLine{{ProductID: "prod-3", Size: "42", Quantity: 5}}}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	p := productByID(t, st, "prod-3")
	idx := p.VariantIndex(domain.NewVariantKey("42", ""))
	if idx < 0 || p.Variants[idx].Quantity != 5 {
		t.Fatalf("expected new variant 42 with 5 units, got %+v", p.Variants)
	}
	assertLedgersConsistent(t, st)
}

func TestCreateOrderRejectsUnknownVariant(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	for _, item := range []domain.OrderItem{
		{ProductID: "prod-1", Quantity: 1, Price: 15000, Size: "XL", Color: "Rouge"},
		{ProductID: "prod-1", Quantity: 1, Price: 15000},
	} {
		_, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{ClientID: "cli-1", Items: []domain.OrderItem{item}})
		if !errors.Is(err, ErrUnknownVariant) {
			t.Fatalf("expected unknown variant for %+v, got %v", item, err)
		}
	}
	if st.Version() != 0 {
		t.Fatalf("rejected orders must not change state")
	}
}

func TestCreateOrderPaidWritesPayment(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID:      "cli-2",
		Items:         []domain.OrderItem{{ProductID: "prod-1", Quantity: 2, Price: 15000, Size: "M", Color: "Rouge"}},
		PaymentStatus: domain.PaymentPaid,
		Discount:      1000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Total != 29000 || order.PaidAmount != 29000 || order.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("unexpected order %+v", order)
	}
	payments, _ := svc.ListPayments(ctx, order.ID)
	if len(payments) != 1 || payments[0].Method != domain.MethodCash {
		t.Fatalf("expected one cash payment, got %+v", payments)
	}
	assertLedgersConsistent(t, st)
}

func TestCreateOrderRejectsNonPositiveTotal(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 1000}},
		Discount: 1000,
	})
	if !errors.Is(err, ErrInvalidTotal) {
		t.Fatalf("expected invalid total, got %v", err)
	}
}

func TestUpdateOrderAppliesVariantDeltas(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-1", Quantity: 2, Price: 15000, Size: "M", Color: "Rouge"}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddPayment(ctx, order.ID, domain.PaymentRequest{Amount: 10000, Method: domain.MethodCash}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	updated, err := svc.UpdateOrder(ctx, order.ID, domain.UpdateOrderRequest{
		ClientID: "cli-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 1, Price: 15000, Size: "M", Color: "Rouge"},
			{ProductID: "prod-1", Quantity: 2, Price: 15000, Size: "L", Color: "Rouge"},
		},
	})
	if err != nil {
		t.Fatalf("update order: %v", err)
	}
	if updated.Total != 45000 || updated.PaidAmount != 10000 || updated.PaymentStatus != domain.PaymentPartial {
		t.Fatalf("unexpected updated order %+v", updated)
	}

	p := productByID(t, st, "prod-1")
	mRouge := p.Variants[p.VariantIndex(domain.NewVariantKey("M", "Rouge"))].Quantity
	lRouge := p.Variants[p.VariantIndex(domain.NewVariantKey("L", "Rouge"))].Quantity
	if mRouge != 4 || lRouge != 2 || p.Stock != 9 {
		t.Fatalf("expected M/Rouge 4, L/Rouge 2, stock 9; got %d %d %d", mRouge, lRouge, p.Stock)
	}

	if _, err := svc.UpdateOrder(ctx, order.ID, domain.UpdateOrderRequest{ClientID: "cli-1"}); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected empty order to be rejected, got %v", err)
	}
	assertLedgersConsistent(t, st)
}

func TestPaymentEditsKeepPaidAmountInRange(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.AddPayment(ctx, order.ID, domain.PaymentRequest{Amount: 25001, Method: domain.MethodCash}); !errors.Is(err, ErrPaymentOutOfRange) {
		t.Fatalf("expected overpayment to fail, got %v", err)
	}
	first, err := svc.AddPayment(ctx, order.ID, domain.PaymentRequest{Amount: 10000, Method: domain.MethodCash})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if _, err := svc.AddPayment(ctx, order.ID, domain.PaymentRequest{Amount: 5000, Method: domain.MethodCard}); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if _, err := svc.UpdatePayment(ctx, first.ID, domain.PaymentRequest{Amount: 21000, Method: domain.MethodCash}); !errors.Is(err, ErrPaymentOutOfRange) {
		t.Fatalf("expected edit above total to fail, got %v", err)
	}
	if _, err := svc.UpdatePayment(ctx, first.ID, domain.PaymentRequest{Amount: 20000, Method: domain.MethodMobileMoney}); err != nil {
		t.Fatalf("update payment: %v", err)
	}

	got, _ := svc.GetOrder(ctx, order.ID)
	if got.PaidAmount != 25000 || got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected paid order, got %d %s", got.PaidAmount, got.PaymentStatus)
	}
	assertLedgersConsistent(t, st)
}

func TestReturnRefundsAndRestocks(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID:      "cli-1",
		Items:         []domain.OrderItem{{ProductID: "prod-1", Quantity: 2, Price: 15000, Size: "M", Color: "Rouge"}},
		PaymentStatus: domain.PaymentPaid,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	ret, err := svc.CreateReturn(ctx, order.ID, domain.ReturnRequest{
		Items:        []domain.ReturnItem{{ProductID: "prod-1", Size: "M", Color: "Rouge", Quantity: 1}},
		RefundAmount: 15000,
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if ret.Items[0].Price != 15000 || ret.RefundMethod != domain.MethodCash {
		t.Fatalf("expected defaults from the order line, got %+v", ret)
	}

	got, _ := svc.GetOrder(ctx, order.ID)
	if got.Total != 15000 || got.PaidAmount != 15000 {
		t.Fatalf("expected total and paid 15000, got %d / %d", got.Total, got.PaidAmount)
	}
	if got.DeliveryStatus != domain.DeliveryPartiallyReturned {
		t.Fatalf("expected partial return status, got %s", got.DeliveryStatus)
	}
	p := productByID(t, st, "prod-1")
	if q := p.Variants[p.VariantIndex(domain.NewVariantKey("M", "Rouge"))].Quantity; q != 4 {
		t.Fatalf("expected M/Rouge 4 after return, got %d", q)
	}

	payments, _ := svc.ListPayments(ctx, order.ID)
	var refund domain.Payment
	for _, p := range payments {
		if p.IsRefund() {
			refund = p
		}
	}
	if refund.Amount != -15000 {
		t.Fatalf("expected negative refund payment, got %+v", payments)
	}
	if err := svc.DeletePayment(ctx, refund.ID); !errors.Is(err, ErrRefundLocked) {
		t.Fatalf("expected refund row to be locked, got %v", err)
	}

	if _, err := svc.CreateReturn(ctx, order.ID, domain.ReturnRequest{
		Items: []domain.ReturnItem{{ProductID: "prod-1", Size: "M", Color: "Rouge", Quantity: 2}},
	}); !errors.Is(err, ErrReturnExceedsOrder) {
		t.Fatalf("expected over-return to fail, got %v", err)
	}

	if _, err := svc.CreateReturn(ctx, order.ID, domain.ReturnRequest{
		Items:        []domain.ReturnItem{{ProductID: "prod-1", Size: "M", Color: "Rouge", Quantity: 1}},
		RefundAmount: 15000,
	}); err != nil {
		t.Fatalf("second return: %v", err)
	}
	got, _ = svc.GetOrder(ctx, order.ID)
	if got.DeliveryStatus != domain.DeliveryReturned || got.PaymentStatus != domain.PaymentRefunded {
		t.Fatalf("expected fully returned and refunded, got %s / %s", got.DeliveryStatus, got.PaymentStatus)
	}
	if _, err := svc.UpdateOrderDeliveryStatus(ctx, order.ID, domain.DeliveryDelivered); !errors.Is(err, ErrOrderHasReturns) {
		t.Fatalf("expected delivery change on a returned order to fail, got %v", err)
	}
	got, _ = svc.GetOrder(ctx, order.ID)
	if got.DeliveryStatus != domain.DeliveryReturned {
		t.Fatalf("expected return status to stay, got %s", got.DeliveryStatus)
	}
	if _, err := svc.CancelOrder(ctx, order.ID); err == nil {
		t.Fatalf("expected cancel of a returned order to fail")
	}
	assertLedgersConsistent(t, st)
}

func TestDeliveredBlockedByNegativeStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 5, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("oversold order should be accepted: %v", err)
	}
	if _, err := svc.UpdateOrderDeliveryStatus(ctx, order.ID, domain.DeliveryDelivered); !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("expected negative stock to block delivery, got %v", err)
	}
	if _, err := svc.UpdateOrderDeliveryStatus(ctx, order.ID, domain.DeliveryCancelled); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected cancellation through delivery status to fail, got %v", err)
	}
	updated, err := svc.UpdateOrderDeliveryStatus(ctx, order.ID, domain.DeliveryOutOfStock)
	if err != nil || updated.DeliveryStatus != domain.DeliveryOutOfStock {
		t.Fatalf("expected out of stock status, got %v %s", err, updated.DeliveryStatus)
	}
}

func TestMarkInstallmentAsPaidIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	sched, err := svc.CreatePaymentSchedule(ctx, order.ID, domain.ScheduleRequest{
		Count:        2,
		FirstDueDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if len(sched.Installments) != 2 || sched.Installments[0].Amount != 12500 || sched.Installments[1].DueDate.Month() != time.December {
		t.Fatalf("unexpected installments %+v", sched.Installments)
	}

	if _, err := svc.MarkInstallmentAsPaid(ctx, order.ID, 0, domain.MethodMobileMoney); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	version := st.Version()
	again, err := svc.MarkInstallmentAsPaid(ctx, order.ID, 0, domain.MethodMobileMoney)
	if err != nil {
		t.Fatalf("mark paid again: %v", err)
	}
	if st.Version() != version {
		t.Fatalf("second mark must not change state")
	}
	if again.Installments[0].Status != domain.InstallmentPaid {
		t.Fatalf("expected paid installment, got %+v", again.Installments[0])
	}

	payments, _ := svc.ListPayments(ctx, order.ID)
	got, _ := svc.GetOrder(ctx, order.ID)
	if len(payments) != 1 || got.PaidAmount != 12500 || got.PaymentStatus != domain.PaymentPartial {
		t.Fatalf("expected one payment of 12500, got %d payments paid %d %s", len(payments), got.PaidAmount, got.PaymentStatus)
	}
	if got.PaymentScheduleID != sched.ID {
		t.Fatalf("expected order to reference schedule %s, got %s", sched.ID, got.PaymentScheduleID)
	}
	assertLedgersConsistent(t, st)
}

func TestPaymentScheduleFormulasAndStableID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.UpdatePaymentSchedule(ctx, order.ID, domain.ScheduleRequest{Count: 2}); err == nil {
		t.Fatalf("expected update without a schedule to fail")
	}

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreatePaymentSchedule(ctx, order.ID, domain.ScheduleRequest{Installments: []domain.InstallmentInput{
		{DueDate: due, Formula: "remaining / 2"},
		{DueDate: due.AddDate(0, 1, 0), Formula: "remaining - remaining / 2"},
	}})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if first.Installments[0].Amount != 12500 || first.Installments[1].Amount != 12500 {
		t.Fatalf("unexpected formula amounts %+v", first.Installments)
	}

	second, err := svc.UpdatePaymentSchedule(ctx, order.ID, domain.ScheduleRequest{Installments: []domain.InstallmentInput{
		{DueDate: due, Amount: 25000},
	}})
	if err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	if second.ID != first.ID || len(second.Installments) != 1 || second.Installments[0].Status != domain.InstallmentPending {
		t.Fatalf("expected replaced schedule with stable id, got %+v", second)
	}

	if _, err := svc.CreatePaymentSchedule(ctx, order.ID, domain.ScheduleRequest{Installments: []domain.InstallmentInput{
		{DueDate: due, Formula: "remaining /"},
	}}); !errors.Is(err, ErrInvalidInstallment) {
		t.Fatalf("expected bad formula to fail, got %v", err)
	}
}

func TestScheduleInstallmentsMustFitBalance(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	even, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 3000}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.CreatePaymentSchedule(ctx, even.ID, domain.ScheduleRequest{Installments: []domain.InstallmentInput{
		{DueDate: due, Amount: 2000},
		{DueDate: due.AddDate(0, 1, 0), Amount: 2000},
	}}); !errors.Is(err, ErrInvalidInstallment) {
		t.Fatalf("expected installments above the balance to fail, got %v", err)
	}

	odd, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 3001}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	sched, err := svc.CreatePaymentSchedule(ctx, odd.ID, domain.ScheduleRequest{Installments: []domain.InstallmentInput{
		{DueDate: due, Formula: "remaining / 2"},
		{DueDate: due.AddDate(0, 1, 0), Formula: "remaining - remaining / 2"},
	}})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if sched.Installments[0].Amount != 1501 || sched.Installments[1].Amount != 1500 {
		t.Fatalf("expected rounding folded into the last installment, got %+v", sched.Installments)
	}

	for i := range sched.Installments {
		if _, err := svc.MarkInstallmentAsPaid(ctx, odd.ID, i, domain.MethodCash); err != nil {
			t.Fatalf("mark installment %d: %v", i, err)
		}
	}
	got, _ := svc.GetOrder(ctx, odd.ID)
	if got.PaidAmount != 3001 || got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected fully paid order, got paid %d %s", got.PaidAmount, got.PaymentStatus)
	}
	assertLedgersConsistent(t, st)
}

func TestExportRestoreRoundTripClearsSession(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	exported, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{UserID: "user-admin", PIN: testAdminPIN}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.RestoreData(ctx, exported); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored, _ := st.Snapshot()
	if len(restored.Orders) != 0 || len(restored.Products) != len(exported.Products) {
		t.Fatalf("expected exported document back, got %d orders", len(restored.Orders))
	}
	if restored.Products[1].Stock != exported.Products[1].Stock {
		t.Fatalf("expected stock %d, got %d", exported.Products[1].Stock, restored.Products[1].Stock)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected restore to clear the session")
	}

	if err := svc.RestoreData(ctx, domain.NewDocument()); !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("expected backup without admin to be rejected, got %v", err)
	}
}

func TestResetKeepsUsersAndCategories(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddCategory(ctx, domain.CategoryInput{Name: "Bijoux"}); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := svc.ResetAllData(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	doc, _ := st.Snapshot()
	if len(doc.Products) != 0 || len(doc.Clients) != 0 || len(doc.Users) != 1 || !doc.HasCategory("Bijoux") {
		t.Fatalf("unexpected document after reset: %d products %d users %v", len(doc.Products), len(doc.Users), doc.Categories)
	}
}

func TestLoginUpgradesLegacyPIN(t *testing.T) {
	doc := domain.NewDocument()
	doc.Users = []domain.User{{ID: "user-1", Name: "Amina", PIN: "583920", Role: domain.RoleAdmin}}
	st := state.New(doc)
	svc := New(st, nil)
	ctx := context.Background()

	if _, err := svc.Login(ctx, domain.LoginRequest{UserID: "user-1", PIN: "583921"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	user, err := svc.Login(ctx, domain.LoginRequest{UserID: "user-1", PIN: "583920"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !isPINHash(user.PIN) {
		t.Fatalf("expected legacy PIN to be hashed")
	}
	stored, _ := svc.User("user-1")
	if !verifyPIN(stored.PIN, "583920") {
		t.Fatalf("stored hash does not verify")
	}
	if view, ok := svc.CurrentUser(); !ok || view.ID != "user-1" {
		t.Fatalf("expected session for user-1")
	}
	svc.Logout(ctx)
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected logout to clear the session")
	}
}

func TestUserRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddUser(ctx, domain.UserInput{Name: "Awa", PIN: "1234", Role: domain.RoleSeller}); !errors.Is(err, ErrWeakPIN) {
		t.Fatalf("expected weak PIN to be rejected, got %v", err)
	}
	seller, err := svc.AddUser(ctx, domain.UserInput{Name: "Awa", PIN: "580417", Role: domain.RoleSeller})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := svc.DeleteUser(ctx, "user-admin"); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected last admin to be protected, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, "user-admin", domain.UserInput{Name: "Admin", Role: domain.RoleManager}); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected last admin demotion to fail, got %v", err)
	}

	sellerCtx := WithActor(ctx, domain.Actor{UserID: seller.ID, Name: seller.Name, Role: domain.RoleSeller})
	if _, err := svc.AddProduct(sellerCtx, domain.ProductInput{Name: "Pagne", Category: "Vêtements"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected seller to be forbidden, got %v", err)
	}
	order, err := svc.CreateOrder(sellerCtx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("seller create order: %v", err)
	}
	if order.ModificationHistory[0].User != "Awa" {
		t.Fatalf("expected history to name the seller, got %+v", order.ModificationHistory)
	}
}

func TestProductRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.AddProduct(ctx, domain.ProductInput{
		Name:     "Boubou",
		SKU:      "bb-001",
		Category: "Vêtements",
		Stock:    99,
		Variants: []domain.ProductVariant{{Size: "L", Quantity: 2}, {Size: "XL", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if product.SKU != "BB-001" || product.Stock != 5 {
		t.Fatalf("expected normalized sku and stock from variants, got %+v", product)
	}
	if _, err := svc.AddProduct(ctx, domain.ProductInput{Name: "Autre", SKU: "BB-001", Category: "Vêtements"}); !errors.Is(err, ErrDuplicateSKU) {
		t.Fatalf("expected duplicate sku, got %v", err)
	}
	if _, err := svc.AddProduct(ctx, domain.ProductInput{Name: "Collier", Category: "Bijoux"}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
	if _, err := svc.AddProduct(ctx, domain.ProductInput{
		Name: "Pagne", Category: "Vêtements",
		Variants: []domain.ProductVariant{{Size: "M", Quantity: 1}, {Size: " M ", Quantity: 1}},
	}); !errors.Is(err, ErrDuplicateVariant) {
		t.Fatalf("expected duplicate variant, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
}

func TestGenerateReplenishmentOrders(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	suggestions, err := svc.ReplenishmentSuggestions(ctx)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].SupplierID != "sup-2" || suggestions[0].Lines[0].SuggestedQty != 7 {
		t.Fatalf("unexpected suggestions %+v", suggestions)
	}

	orders, err := svc.GenerateReplenishmentOrders(ctx, domain.ReplenishmentRequest{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(orders) != 1 || orders[0].Total != 84000 || orders[0].Status != domain.PurchaseOrderSent {
		t.Fatalf("unexpected purchase orders %+v", orders)
	}
	if _, err := svc.GenerateReplenishmentOrders(ctx, domain.ReplenishmentRequest{SupplierIDs: []string{"sup-1"}}); !errors.Is(err, ErrNothingToReplenish) {
		t.Fatalf("expected nothing to replenish for sup-1, got %v", err)
	}
}

func TestReplenishmentReceiptKeepsVariantsInStep(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 5, Price: 15000, Size: "M", Color: "Rouge"},
			{ProductID: "prod-1", Quantity: 4, Price: 15000, Size: "L", Color: "Rouge"},
		},
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got := productByID(t, st, "prod-1").Stock; got != 3 {
		t.Fatalf("expected stock 3 after sale, got %d", got)
	}

	orders, err := svc.GenerateReplenishmentOrders(ctx, domain.ReplenishmentRequest{SupplierIDs: []string{"sup-1"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("expected one purchase order with a line per low variant, got %+v", orders)
	}
	po := orders[0]
	lines := make([]domain.ReceiveLine, 0, len(po.Items))
	ordered := 0
	for _, item := range po.Items {
		if item.Key().IsZero() {
			t.Fatalf("generated line for a product with variants has no size or color: %+v", item)
		}
		ordered += item.Quantity
		lines = append(lines, domain.ReceiveLine{ProductID: item.ProductID, Size: item.Size, Color: item.Color, Quantity: item.Quantity})
	}
	if ordered != 5 || po.Items[0].Size != "M" || po.Items[0].Quantity != 3 || po.Items[1].Size != "L" || po.Items[1].Quantity != 2 {
		t.Fatalf("unexpected split %+v", po.Items)
	}

	received, err := svc.ReceivePurchaseOrderItems(ctx, po.ID, domain.ReceiveRequest{Lines: lines})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if received.Status != domain.PurchaseOrderReceived {
		t.Fatalf("expected full receipt, got %s", received.Status)
	}
	if got := productByID(t, st, "prod-1").Stock; got != 8 {
		t.Fatalf("expected stock 8 after receipt, got %d", got)
	}
	assertLedgersConsistent(t, st)
}

func TestPurchaseOrderNeedsVariantForProductWithVariants(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	version := st.Version()

	if _, err := svc.AddPurchaseOrder(ctx, domain.PurchaseOrderRequest{
		SupplierID: "sup-1",
		Items:      []domain.PurchaseOrderItem{{ProductID: "prod-1", Quantity: 5, PurchasePrice: 8000}},
	}); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected line without size or color to fail, got %v", err)
	}
	if st.Version() != version {
		t.Fatalf("rejected purchase order must not change state")
	}
}

func TestReceiveWithoutVariantIsRejected(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Saved by an older build that did not require a variant on the line.
	doc, _ := st.Snapshot()
	doc.PurchaseOrders = append(doc.PurchaseOrders, domain.PurchaseOrder{
		ID: "po-legacy", SupplierID: "sup-1", Status: domain.PurchaseOrderSent,
		Items: []domain.PurchaseOrderItem{{ProductID: "prod-1", Quantity: 5, PurchasePrice: 8000}},
		Total: 40000, PaymentStatus: domain.PaymentPending,
	})
	st.Replace(doc)
	version := st.Version()

	if _, err := svc.ReceivePurchaseOrderItems(ctx, "po-legacy", domain.ReceiveRequest{Lines: []domain.ReceiveLine{{ProductID: "prod-1", Quantity: 5}}}); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected receipt without size or color to fail, got %v", err)
	}
	if st.Version() != version {
		t.Fatalf("rejected receipt must not change state")
	}
	assertLedgersConsistent(t, st)
}

func TestSalesReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID:      "cli-1",
		Items:         []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
		PaymentStatus: domain.PaymentPaid,
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-2",
		Items:    []domain.OrderItem{{ProductID: "prod-3", Quantity: 2, Price: 10000, Size: "38"}},
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	cancelled, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		ClientID: "cli-2",
		Items:    []domain.OrderItem{{ProductID: "prod-2", Quantity: 1, Price: 25000}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.CancelOrder(ctx, cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	rep, err := svc.SalesReport(ctx, domain.SalesReportQuery{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Orders != 2 || rep.Revenue != 45000 || rep.Collected != 25000 || rep.Outstanding != 20000 || rep.GrossProfit != 23000 {
		t.Fatalf("unexpected totals %+v", rep)
	}
	if rep.AverageBasket != "22500" || rep.MarginPercent != "51.11" || rep.CollectionRate != "55.56" {
		t.Fatalf("unexpected ratios %s %s %s", rep.AverageBasket, rep.MarginPercent, rep.CollectionRate)
	}
	if rep.ByPaymentStatus[string(domain.PaymentCancelled)] != 1 {
		t.Fatalf("expected cancelled order in status counts, got %v", rep.ByPaymentStatus)
	}
	if len(rep.TopProducts) != 2 || rep.TopProducts[0].ProductID != "prod-2" {
		t.Fatalf("unexpected top products %+v", rep.TopProducts)
	}

	byClient, _ := svc.SalesReport(ctx, domain.SalesReportQuery{ClientID: "cli-2"})
	if byClient.Orders != 1 || byClient.Revenue != 20000 {
		t.Fatalf("unexpected client report %+v", byClient)
	}
}

func TestBackupDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	settings := domain.BackupSettings{Enabled: true, Frequency: domain.BackupDaily, Time: "22:00"}
	if !BackupDue(settings, now) {
		t.Fatalf("expected first backup to be due")
	}

	last := time.Date(2026, 3, 10, 22, 5, 0, 0, time.UTC).UnixMilli()
	settings.LastBackupTimestamp = &last
	if BackupDue(settings, now) {
		t.Fatalf("backup already ran for today's slot")
	}
	if !BackupDue(settings, now.AddDate(0, 0, 1)) {
		t.Fatalf("expected next day's backup to be due")
	}

	settings.Frequency = domain.BackupWeekly
	if BackupDue(settings, now.AddDate(0, 0, 6)) {
		t.Fatalf("weekly backup should wait seven days")
	}
	if !BackupDue(settings, now.AddDate(0, 0, 7)) {
		t.Fatalf("expected weekly backup to be due after seven days")
	}

	settings.Enabled = false
	if BackupDue(settings, now.AddDate(0, 0, 7)) {
		t.Fatalf("disabled backups are never due")
	}
}
