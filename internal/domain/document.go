package domain

import "slices"

// DefaultCategories seed a fresh shop.
var DefaultCategories = []string{"Vêtements", "Accessoires", "Chaussures"}

// Document is the whole persisted shop state. The logged-in user is
// session data and never part of it.
type Document struct {
	Products         []Product         `json:"products"`
	Clients          []Client          `json:"clients"`
	Suppliers        []Supplier        `json:"suppliers"`
	Orders           []Order           `json:"orders"`
	Returns          []ProductReturn   `json:"returns"`
	PurchaseOrders   []PurchaseOrder   `json:"purchaseOrders"`
	Payments         []Payment         `json:"payments"`
	SupplierPayments []SupplierPayment `json:"supplierPayments"`
	PaymentSchedules []PaymentSchedule `json:"paymentSchedules"`
	Categories       []string          `json:"categories"`
	Users            []User            `json:"users"`
	BackupSettings   BackupSettings    `json:"backupSettings"`
}

func DefaultBackupSettings() BackupSettings {
	return BackupSettings{Enabled: false, Frequency: BackupDaily, Time: "22:00"}
}

func NewDocument() Document {
	doc := Document{
		Categories:     slices.Clone(DefaultCategories),
		BackupSettings: DefaultBackupSettings(),
	}
	doc.Normalize()
	return doc
}

// Normalize replaces nil collections with empty ones and fills defaults
// that older backups may lack.
func (d *Document) Normalize() {
	d.Products = nonNil(d.Products)
	d.Clients = nonNil(d.Clients)
	d.Suppliers = nonNil(d.Suppliers)
	d.Orders = nonNil(d.Orders)
	d.Returns = nonNil(d.Returns)
	d.PurchaseOrders = nonNil(d.PurchaseOrders)
	d.Payments = nonNil(d.Payments)
	d.SupplierPayments = nonNil(d.SupplierPayments)
	d.PaymentSchedules = nonNil(d.PaymentSchedules)
	d.Categories = nonNil(d.Categories)
	d.Users = nonNil(d.Users)

	for i := range d.Products {
		d.Products[i].Variants = nonNil(d.Products[i].Variants)
	}
	for i := range d.Orders {
		d.Orders[i].Items = nonNil(d.Orders[i].Items)
		d.Orders[i].ModificationHistory = nonNil(d.Orders[i].ModificationHistory)
		if d.Orders[i].DeliveryStatus == "" {
			d.Orders[i].DeliveryStatus = DeliveryPending
		}
		if d.Orders[i].PaymentStatus == "" {
			d.Orders[i].PaymentStatus = DerivePaymentStatus(d.Orders[i].PaidAmount, d.Orders[i].Total, false)
		}
	}
	for i := range d.PurchaseOrders {
		d.PurchaseOrders[i].Items = nonNil(d.PurchaseOrders[i].Items)
		if d.PurchaseOrders[i].Status == "" {
			d.PurchaseOrders[i].Status = PurchaseOrderSent
		}
		if d.PurchaseOrders[i].PaymentStatus == "" {
			d.PurchaseOrders[i].PaymentStatus = DerivePurchaseOrderPaymentStatus(d.PurchaseOrders[i].PaidAmount, d.PurchaseOrders[i].Total)
		}
	}
	for i := range d.PaymentSchedules {
		d.PaymentSchedules[i].Installments = nonNil(d.PaymentSchedules[i].Installments)
	}
	for i := range d.Returns {
		d.Returns[i].Items = nonNil(d.Returns[i].Items)
	}
	if !d.BackupSettings.Frequency.Valid() {
		d.BackupSettings.Frequency = BackupDaily
	}
	if d.BackupSettings.Time == "" {
		d.BackupSettings.Time = DefaultBackupSettings().Time
	}
}

// Clone deep-copies every collection so the result shares no memory with d.
func (d Document) Clone() Document {
	out := d
	out.Products = make([]Product, len(d.Products))
	for i, p := range d.Products {
		out.Products[i] = p.Clone()
	}
	out.Clients = slices.Clone(nonNil(d.Clients))
	out.Suppliers = slices.Clone(nonNil(d.Suppliers))
	out.Orders = make([]Order, len(d.Orders))
	for i, o := range d.Orders {
		out.Orders[i] = o.Clone()
	}
	out.Returns = make([]ProductReturn, len(d.Returns))
	for i, r := range d.Returns {
		r.Items = slices.Clone(r.Items)
		out.Returns[i] = r
	}
	out.PurchaseOrders = make([]PurchaseOrder, len(d.PurchaseOrders))
	for i, po := range d.PurchaseOrders {
		out.PurchaseOrders[i] = po.Clone()
	}
	out.Payments = slices.Clone(nonNil(d.Payments))
	out.SupplierPayments = slices.Clone(nonNil(d.SupplierPayments))
	out.PaymentSchedules = make([]PaymentSchedule, len(d.PaymentSchedules))
	for i, s := range d.PaymentSchedules {
		out.PaymentSchedules[i] = s.Clone()
	}
	out.Categories = slices.Clone(nonNil(d.Categories))
	out.Users = slices.Clone(nonNil(d.Users))
	if d.BackupSettings.LastBackupTimestamp != nil {
		ts := *d.BackupSettings.LastBackupTimestamp
		out.BackupSettings.LastBackupTimestamp = &ts
	}
	return out
}

func (d Document) Product(id string) (Product, bool) {
	return find(d.Products, func(p Product) bool { return p.ID == id })
}

func (d Document) Client(id string) (Client, bool) {
	return find(d.Clients, func(c Client) bool { return c.ID == id })
}

func (d Document) Supplier(id string) (Supplier, bool) {
	return find(d.Suppliers, func(s Supplier) bool { return s.ID == id })
}

func (d Document) Order(id string) (Order, bool) {
	return find(d.Orders, func(o Order) bool { return o.ID == id })
}

func (d Document) Payment(id string) (Payment, bool) {
	return find(d.Payments, func(p Payment) bool { return p.ID == id })
}

func (d Document) PurchaseOrder(id string) (PurchaseOrder, bool) {
	return find(d.PurchaseOrders, func(po PurchaseOrder) bool { return po.ID == id })
}

func (d Document) User(id string) (User, bool) {
	return find(d.Users, func(u User) bool { return u.ID == id })
}

// ScheduleForOrder follows the order's back-reference first and falls back
// to scanning by order id.
func (d Document) ScheduleForOrder(order Order) (PaymentSchedule, bool) {
	if order.PaymentScheduleID != "" {
		if s, ok := find(d.PaymentSchedules, func(s PaymentSchedule) bool { return s.ID == order.PaymentScheduleID }); ok {
			return s, true
		}
	}
	return find(d.PaymentSchedules, func(s PaymentSchedule) bool { return s.OrderID == order.ID })
}

func (d Document) HasCategory(name string) bool {
	return slices.Contains(d.Categories, name)
}

// OrderPaymentsTotal sums every payment row of the order, refunds included.
func (d Document) OrderPaymentsTotal(orderID string) int64 {
	var total int64
	for _, p := range d.Payments {
		if p.OrderID == orderID {
			total += p.Amount
		}
	}
	return total
}

func (d Document) OrderHasRefund(orderID string) bool {
	for _, p := range d.Payments {
		if p.OrderID == orderID && p.IsRefund() {
			return true
		}
	}
	return false
}

func (d Document) OrderReturns(orderID string) []ProductReturn {
	var out []ProductReturn
	for _, r := range d.Returns {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out
}

func (d Document) SupplierPaymentsTotal(purchaseOrderID string) int64 {
	var total int64
	for _, p := range d.SupplierPayments {
		if p.PurchaseOrderID == purchaseOrderID {
			total += p.Amount
		}
	}
	return total
}

func (d Document) CountRole(role UserRole) int {
	n := 0
	for _, u := range d.Users {
		if u.Role == role {
			n++
		}
	}
	return n
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
