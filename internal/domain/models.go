package domain

import (
	"strings"
	"time"
)

// VariantKey identifies a size/color stock bucket inside a product.
type VariantKey struct {
	Size  string
	Color string
}

func NewVariantKey(size, color string) VariantKey {
	return VariantKey{Size: strings.TrimSpace(size), Color: strings.TrimSpace(color)}
}

func (k VariantKey) IsZero() bool {
	return k.Size == "" && k.Color == ""
}

func (k VariantKey) String() string {
	if k.IsZero() {
		return "-"
	}
	return k.Size + "/" + k.Color
}

type ProductVariant struct {
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

func (v ProductVariant) Key() VariantKey {
	return NewVariantKey(v.Size, v.Color)
}

type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	SupplierID     string           `json:"supplierId"`
	PurchasePrice  int64            `json:"purchasePrice"`
	SellingPrice   int64            `json:"sellingPrice"`
	Stock          int              `json:"stock"`
	AlertThreshold int              `json:"alertThreshold"`
	Variants       []ProductVariant `json:"variants"`
	ImageURL       string           `json:"imageUrl,omitempty"`
}

// Clone returns a copy whose variant slice can be mutated independently.
func (p Product) Clone() Product {
	out := p
	out.Variants = append([]ProductVariant(nil), p.Variants...)
	if out.Variants == nil {
		out.Variants = []ProductVariant{}
	}
	return out
}

func (p Product) VariantIndex(key VariantKey) int {
	for i, v := range p.Variants {
		if v.Key() == key {
			return i
		}
	}
	return -1
}

func (p Product) VariantTotal() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Quantity
	}
	return total
}

type Client struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Supplier struct {
	ID            string `json:"id"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type OrderItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Price     int64  `json:"price" validate:"min=0"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (i OrderItem) Key() VariantKey {
	return NewVariantKey(i.Size, i.Color)
}

type Modification struct {
	Date        time.Time `json:"date"`
	User        string    `json:"user"`
	Description string    `json:"description"`
}

type Order struct {
	ID                  string         `json:"id"`
	Date                time.Time      `json:"date"`
	ClientID            string         `json:"clientId"`
	Items               []OrderItem    `json:"items"`
	Total               int64          `json:"total"`
	PaidAmount          int64          `json:"paidAmount"`
	Discount            int64          `json:"discount"`
	Notes               string         `json:"notes,omitempty"`
	PaymentStatus       PaymentStatus  `json:"paymentStatus"`
	DeliveryStatus      DeliveryStatus `json:"deliveryStatus"`
	PaymentScheduleID   string         `json:"paymentScheduleId,omitempty"`
	ModificationHistory []Modification `json:"modificationHistory"`
	IsArchived          bool           `json:"isArchived"`
}

// Clone copies the item and history slices so appends never alias the source.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	out.ModificationHistory = append([]Modification(nil), o.ModificationHistory...)
	return out
}

func (o Order) Subtotal() int64 {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

func (o Order) Quantity() int {
	qty := 0
	for _, item := range o.Items {
		qty += item.Quantity
	}
	return qty
}

type Payment struct {
	ID      string        `json:"id"`
	OrderID string        `json:"orderId"`
	Date    time.Time     `json:"date"`
	Amount  int64         `json:"amount"`
	Method  PaymentMethod `json:"method"`
}

// IsRefund reports whether the row was written by a product return.
func (p Payment) IsRefund() bool {
	return p.Amount < 0
}

type Installment struct {
	DueDate time.Time         `json:"dueDate"`
	Amount  int64             `json:"amount"`
	Status  InstallmentStatus `json:"status"`
}

type PaymentSchedule struct {
	ID           string        `json:"id"`
	OrderID      string        `json:"orderId"`
	Installments []Installment `json:"installments"`
}

func (s PaymentSchedule) Clone() PaymentSchedule {
	out := s
	out.Installments = append([]Installment(nil), s.Installments...)
	return out
}

type PurchaseOrderItem struct {
	ProductID        string `json:"productId" validate:"required"`
	Quantity         int    `json:"quantity" validate:"gt=0"`
	QuantityReceived int    `json:"quantityReceived"`
	PurchasePrice    int64  `json:"purchasePrice" validate:"min=0"`
	Size             string `json:"size,omitempty"`
	Color            string `json:"color,omitempty"`
}

func (i PurchaseOrderItem) Key() VariantKey {
	return NewVariantKey(i.Size, i.Color)
}

func (i PurchaseOrderItem) Remaining() int {
	if i.QuantityReceived >= i.Quantity {
		return 0
	}
	return i.Quantity - i.QuantityReceived
}

type PurchaseOrder struct {
	ID            string              `json:"id"`
	SupplierID    string              `json:"supplierId"`
	Date          time.Time           `json:"date"`
	Items         []PurchaseOrderItem `json:"items"`
	Status        PurchaseOrderStatus `json:"status"`
	Total         int64               `json:"total"`
	PaidAmount    int64               `json:"paidAmount"`
	PaymentStatus PaymentStatus       `json:"paymentStatus"`
	Notes         string              `json:"notes,omitempty"`
}

func (po PurchaseOrder) Clone() PurchaseOrder {
	out := po
	out.Items = append([]PurchaseOrderItem(nil), po.Items...)
	return out
}

func (po PurchaseOrder) HasReceipts() bool {
	for _, item := range po.Items {
		if item.QuantityReceived > 0 {
			return true
		}
	}
	return false
}

type SupplierPayment struct {
	ID              string                `json:"id"`
	PurchaseOrderID string                `json:"purchaseOrderId"`
	Date            time.Time             `json:"date"`
	Amount          int64                 `json:"amount"`
	Method          SupplierPaymentMethod `json:"method"`
}

type ReturnItem struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Price     int64  `json:"price" validate:"min=0"`
}

func (i ReturnItem) Key() VariantKey {
	return NewVariantKey(i.Size, i.Color)
}

type ProductReturn struct {
	ID           string        `json:"id"`
	OrderID      string        `json:"orderId"`
	Date         time.Time     `json:"date"`
	Items        []ReturnItem  `json:"items"`
	RefundAmount int64         `json:"refundAmount"`
	RefundMethod PaymentMethod `json:"refundMethod"`
	Notes        string        `json:"notes,omitempty"`
}

type User struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	PIN  string   `json:"pin"`
	Role UserRole `json:"role"`
}

// UserView is a user without its credential.
type UserView struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

func (u User) View() UserView {
	return UserView{ID: u.ID, Name: u.Name, Role: u.Role}
}

type BackupSettings struct {
	Enabled             bool            `json:"enabled"`
	Frequency           BackupFrequency `json:"frequency"`
	Time                string          `json:"time"`
	LastBackupTimestamp *int64          `json:"lastBackupTimestamp"`
}

// Actor is the authenticated user behind a request.
type Actor struct {
	UserID string
	Name   string
	Role   UserRole
}
