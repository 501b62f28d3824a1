package domain

import (
	"encoding/json"
	"fmt"
)

type PaymentStatus string

const (
	PaymentPaid              PaymentStatus = "Payé"
	PaymentPending           PaymentStatus = "En attente"
	PaymentPartial           PaymentStatus = "Partiellement payé"
	PaymentCancelled         PaymentStatus = "Annulée"
	PaymentRefunded          PaymentStatus = "Remboursé"
	PaymentPartiallyRefunded PaymentStatus = "Partiellement remboursé"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentPartial, PaymentCancelled, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "payment status")
}

type DeliveryStatus string

const (
	DeliveryPending           DeliveryStatus = "En attente"
	DeliveryPreparing         DeliveryStatus = "En préparation"
	DeliveryDelivered         DeliveryStatus = "Livrée"
	DeliveryCancelled         DeliveryStatus = "Annulée"
	DeliveryOutOfStock        DeliveryStatus = "Rupture de stock"
	DeliveryPartiallyReturned DeliveryStatus = "Partiellement retourné"
	DeliveryReturned          DeliveryStatus = "Retourné"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryPreparing, DeliveryDelivered, DeliveryCancelled,
		DeliveryOutOfStock, DeliveryPartiallyReturned, DeliveryReturned:
		return true
	}
	return false
}

// Manual reports whether staff may set the status directly. Cancellation
// and return states are only reached through their own operations.
func (s DeliveryStatus) Manual() bool {
	switch s {
	case DeliveryPending, DeliveryPreparing, DeliveryDelivered, DeliveryOutOfStock:
		return true
	}
	return false
}

func (s *DeliveryStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "delivery status")
}

type PurchaseOrderStatus string

const (
	PurchaseOrderSent              PurchaseOrderStatus = "Envoyée"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "Reçue partiellement"
	PurchaseOrderReceived          PurchaseOrderStatus = "Reçue totalement"
)

func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case PurchaseOrderSent, PurchaseOrderPartiallyReceived, PurchaseOrderReceived:
		return true
	}
	return false
}

func (s *PurchaseOrderStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "purchase order status")
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "En attente"
	InstallmentPaid    InstallmentStatus = "Payé"
)

func (s InstallmentStatus) Valid() bool {
	return s == InstallmentPending || s == InstallmentPaid
}

func (s *InstallmentStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "installment status")
}

type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleManager UserRole = "Manager"
	RoleSeller  UserRole = "Vendeur"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleSeller
}

func (r *UserRole) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, r, "user role")
}

type PaymentMethod string

const (
	MethodCash        PaymentMethod = "Espèces"
	MethodMobileMoney PaymentMethod = "Mobile Money"
	MethodCard        PaymentMethod = "Carte de crédit"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodMobileMoney || m == MethodCard
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, m, "payment method")
}

type SupplierPaymentMethod string

const (
	SupplierMethodCash     SupplierPaymentMethod = "Espèces"
	SupplierMethodTransfer SupplierPaymentMethod = "Virement bancaire"
	SupplierMethodCheque   SupplierPaymentMethod = "Chèque"
)

func (m SupplierPaymentMethod) Valid() bool {
	return m == SupplierMethodCash || m == SupplierMethodTransfer || m == SupplierMethodCheque
}

func (m *SupplierPaymentMethod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, m, "supplier payment method")
}

type BackupFrequency string

const (
	BackupDaily  BackupFrequency = "daily"
	BackupWeekly BackupFrequency = "weekly"
)

func (f BackupFrequency) Valid() bool {
	return f == BackupDaily || f == BackupWeekly
}

func (f *BackupFrequency) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, f, "backup frequency")
}

type enum interface {
	~string
	Valid() bool
}

func unmarshalEnum[T enum](data []byte, dest *T, kind string) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	value := T(raw)
	// Empty values come from older documents; Normalize fills them in.
	if raw != "" && !value.Valid() {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dest = value
	return nil
}
