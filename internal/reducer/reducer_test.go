package reducer

import (
	"testing"
	"time"

	"aminashop/backend/internal/domain"
)

func sampleDocument() domain.Document {
	doc := domain.NewDocument()
	doc.Products = []domain.Product{{
		ID:       "prod-a",
		Name:     "Robe wax",
		Category: "Vêtements",
		Stock:    5,
		Variants: []domain.ProductVariant{{Size: "M", Color: "Rouge", Quantity: 5}},
	}}
	doc.Orders = []domain.Order{{
		ID:             "ord-1",
		Date:           time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		ClientID:       "cli-1",
		Items:          []domain.OrderItem{{ProductID: "prod-a", Quantity: 1, Price: 1000, Size: "M", Color: "Rouge"}},
		Total:          1000,
		PaymentStatus:  domain.PaymentPending,
		DeliveryStatus: domain.DeliveryPreparing,
	}}
	doc.Users = []domain.User{{ID: "usr-1", Name: "Amina", Role: domain.RoleAdmin}}
	return doc
}

func TestReduceIgnoresNilAction(t *testing.T) {
	doc := sampleDocument()
	next := Reduce(doc, nil)
	if len(next.Orders) != 1 || len(next.Products) != 1 {
		t.Fatalf("expected unchanged document")
	}
}

func TestReduceLookupMissLeavesDocumentUnchanged(t *testing.T) {
	doc := sampleDocument()
	updated := doc.Products[0].Clone()
	updated.Stock = 0

	next := Reduce(doc, CancelOrder{
		Order:    domain.Order{ID: "ord-missing"},
		Products: []domain.Product{updated},
	})
	if next.Products[0].Stock != 5 {
		t.Fatalf("products must not change when the order is unknown, got stock %d", next.Products[0].Stock)
	}
	if next.Orders[0].PaymentStatus != domain.PaymentPending {
		t.Fatalf("orders must not change when the order is unknown")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	doc := sampleDocument()
	order := doc.Orders[0].Clone()
	order.PaymentStatus = domain.PaymentCancelled
	order.DeliveryStatus = domain.DeliveryCancelled
	product := doc.Products[0].Clone()
	product.Stock = 6
	product.Variants[0].Quantity = 6

	next := Reduce(doc, CancelOrder{Order: order, Products: []domain.Product{product}})

	if doc.Orders[0].PaymentStatus != domain.PaymentPending {
		t.Fatalf("input order was mutated")
	}
	if doc.Products[0].Stock != 5 || doc.Products[0].Variants[0].Quantity != 5 {
		t.Fatalf("input product was mutated")
	}
	if next.Orders[0].PaymentStatus != domain.PaymentCancelled || next.Products[0].Stock != 6 {
		t.Fatalf("expected cancellation to be applied, got %+v / %+v", next.Orders[0], next.Products[0])
	}
}

func TestReduceCreateOrderAppliesStockAndPaymentTogether(t *testing.T) {
	doc := sampleDocument()
	product := doc.Products[0].Clone()
	product.Stock = 3
	product.Variants[0].Quantity = 3
	order := domain.Order{ID: "ord-2", Total: 2000, PaidAmount: 2000, PaymentStatus: domain.PaymentPaid}
	payment := domain.Payment{ID: "pay-1", OrderID: "ord-2", Amount: 2000, Method: domain.MethodCash}

	next := Reduce(doc, CreateOrder{Order: order, Payment: &payment, Products: []domain.Product{product}})

	if len(next.Orders) != 2 || len(next.Payments) != 1 || next.Products[0].Stock != 3 {
		t.Fatalf("expected order, payment and stock in one transition, got %d orders %d payments stock %d",
			len(next.Orders), len(next.Payments), next.Products[0].Stock)
	}

	again := Reduce(next, CreateOrder{Order: order, Payment: &payment})
	if len(again.Orders) != 2 || len(again.Payments) != 1 {
		t.Fatalf("duplicate order id must be ignored")
	}
}

func TestReduceResetKeepsUsersAndCategories(t *testing.T) {
	doc := sampleDocument()
	doc.Categories = append(doc.Categories, "Sacs")
	ts := int64(1700000000000)
	doc.BackupSettings.LastBackupTimestamp = &ts

	next := Reduce(doc, ResetAllData{})

	if len(next.Orders) != 0 || len(next.Products) != 0 || len(next.Payments) != 0 {
		t.Fatalf("expected business data to be cleared")
	}
	if len(next.Users) != 1 || len(next.Categories) != 4 {
		t.Fatalf("expected users and categories to survive reset, got %d users %v", len(next.Users), next.Categories)
	}
	if next.BackupSettings.LastBackupTimestamp == nil || *next.BackupSettings.LastBackupTimestamp != ts {
		t.Fatalf("expected backup settings to survive reset")
	}
}

func TestReduceRestoreNormalizesCollections(t *testing.T) {
	next := Reduce(sampleDocument(), RestoreData{Document: domain.Document{
		Users: []domain.User{{ID: "usr-9", Name: "Fatou", Role: domain.RoleAdmin}},
	}})

	if next.Orders == nil || next.Products == nil || next.Returns == nil {
		t.Fatalf("expected nil collections to be replaced by empty ones")
	}
	if len(next.Users) != 1 || next.Users[0].ID != "usr-9" {
		t.Fatalf("expected restored users, got %+v", next.Users)
	}
	if next.BackupSettings.Frequency != domain.BackupDaily {
		t.Fatalf("expected default backup frequency, got %q", next.BackupSettings.Frequency)
	}
}

func TestReduceSavePaymentScheduleReplacesInPlace(t *testing.T) {
	doc := sampleDocument()
	order := doc.Orders[0].Clone()
	order.PaymentScheduleID = "sch-1"
	first := domain.PaymentSchedule{ID: "sch-1", OrderID: "ord-1", Installments: []domain.Installment{{Amount: 500}}}
	second := domain.PaymentSchedule{ID: "sch-1", OrderID: "ord-1", Installments: []domain.Installment{{Amount: 400}, {Amount: 600}}}

	doc = Reduce(doc, SavePaymentSchedule{Schedule: first, Order: order})
	doc = Reduce(doc, SavePaymentSchedule{Schedule: second, Order: order})

	if len(doc.PaymentSchedules) != 1 {
		t.Fatalf("expected a single schedule, got %d", len(doc.PaymentSchedules))
	}
	if len(doc.PaymentSchedules[0].Installments) != 2 {
		t.Fatalf("expected replaced installments")
	}
}
