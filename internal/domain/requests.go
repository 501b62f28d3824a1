package domain

import "time"

type LoginRequest struct {
	UserID string `json:"userId" validate:"required"`
	PIN    string `json:"pin" validate:"required,numeric,min=4,max=12"`
}

type LoginResponse struct {
	AccessToken string              `json:"accessToken"`
	ExpiresAt   string              `json:"expiresAt"`
	User        UserView            `json:"user"`
	Permissions map[Permission]bool `json:"permissions"`
}

type ProductInput struct {
	Name           string           `json:"name" validate:"required"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description"`
	Category       string           `json:"category" validate:"required"`
	SupplierID     string           `json:"supplierId"`
	PurchasePrice  int64            `json:"purchasePrice" validate:"min=0"`
	SellingPrice   int64            `json:"sellingPrice" validate:"min=0"`
	Stock          int              `json:"stock"`
	AlertThreshold int              `json:"alertThreshold" validate:"min=0"`
	Variants       []ProductVariant `json:"variants" validate:"dive"`
	ImageURL       string           `json:"imageUrl"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

type ClientInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address"`
}

type SupplierInput struct {
	CompanyName   string `json:"companyName" validate:"required"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
}

type CreateOrderRequest struct {
	ClientID      string        `json:"clientId" validate:"required"`
	Items         []OrderItem   `json:"items" validate:"required,min=1,dive"`
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"omitempty,enum"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,enum"`
	Discount      int64         `json:"discount" validate:"min=0"`
	Notes         string        `json:"notes"`
}

type UpdateOrderRequest struct {
	ClientID string      `json:"clientId" validate:"required"`
	Items    []OrderItem `json:"items" validate:"required,min=1,dive"`
	Discount int64       `json:"discount" validate:"min=0"`
	Notes    string      `json:"notes"`
}

type DeliveryStatusRequest struct {
	Status DeliveryStatus `json:"status" validate:"required,enum"`
}

type ReturnRequest struct {
	Items        []ReturnItem  `json:"items" validate:"required,min=1,dive"`
	RefundAmount int64         `json:"refundAmount" validate:"min=0"`
	RefundMethod PaymentMethod `json:"refundMethod" validate:"omitempty,enum"`
	Notes        string        `json:"notes"`
}

type PaymentRequest struct {
	Amount int64         `json:"amount" validate:"gt=0"`
	Method PaymentMethod `json:"method" validate:"required,enum"`
}

type InstallmentInput struct {
	DueDate time.Time `json:"dueDate"`
	Amount  int64     `json:"amount" validate:"min=0"`
	// Formula is evaluated against total, paid, remaining, count and index
	// when Amount is zero.
	Formula string `json:"formula,omitempty"`
}

type ScheduleRequest struct {
	Installments []InstallmentInput `json:"installments" validate:"dive"`
	// Count and FirstDueDate split the remaining balance into monthly
	// installments when Installments is empty.
	Count        int       `json:"count,omitempty" validate:"min=0,max=60"`
	FirstDueDate time.Time `json:"firstDueDate,omitempty"`
}

type InstallmentPaymentRequest struct {
	Method PaymentMethod `json:"method" validate:"required,enum"`
}

type PurchaseOrderRequest struct {
	SupplierID string              `json:"supplierId" validate:"required"`
	Items      []PurchaseOrderItem `json:"items" validate:"required,min=1,dive"`
	Notes      string              `json:"notes"`
}

type ReceiveLine struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

func (l ReceiveLine) Key() VariantKey {
	return NewVariantKey(l.Size, l.Color)
}

type ReceiveRequest struct {
	Lines []ReceiveLine `json:"lines" validate:"required,min=1,dive"`
}

type SupplierPaymentRequest struct {
	Amount int64                 `json:"amount" validate:"gt=0"`
	Method SupplierPaymentMethod `json:"method" validate:"required,enum"`
}

type UserInput struct {
	Name string   `json:"name" validate:"required"`
	PIN  string   `json:"pin" validate:"omitempty,numeric,min=4,max=12"`
	Role UserRole `json:"role" validate:"required,enum"`
}

type BackupSettingsInput struct {
	Enabled   bool            `json:"enabled"`
	Frequency BackupFrequency `json:"frequency" validate:"required,enum"`
	Time      string          `json:"time" validate:"required,len=5"`
}

type ReplenishmentRequest struct {
	SupplierIDs []string `json:"supplierIds"`
	Notes       string   `json:"notes"`
}
