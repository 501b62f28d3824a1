package validation

import (
	"errors"
	"strings"
	"testing"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/store"
)

func TestCheckRejectsEmptyOrder(t *testing.T) {
	err := Check(domain.CreateOrderRequest{ClientID: "cli-1"})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
	if !strings.Contains(err.Error(), "items") {
		t.Fatalf("expected json field name in message, got %v", err)
	}
}

func TestCheckRejectsUnknownEnum(t *testing.T) {
	err := Check(domain.PaymentRequest{Amount: 100, Method: domain.PaymentMethod("Bitcoin")})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected unknown method to be rejected, got %v", err)
	}
}

func TestCheckAcceptsValidRequest(t *testing.T) {
	err := Check(domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-1", Quantity: 2, Price: 1500}},
	})
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateStructReportsNestedField(t *testing.T) {
	failures := ValidateStruct(domain.CreateOrderRequest{
		ClientID: "cli-1",
		Items:    []domain.OrderItem{{ProductID: "prod-1", Quantity: 0, Price: 1500}},
	})
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(failures))
	}
	if failures[0].Tag != "gt" {
		t.Fatalf("expected gt failure, got %+v", failures[0])
	}
}
