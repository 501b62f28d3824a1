package reducer

import (
	"slices"

	"aminashop/backend/internal/domain"
)

// Reduce returns the document with action applied. It never mutates doc and
// never fails: unknown actions and lookups that miss return doc unchanged.
func Reduce(doc domain.Document, a Action) domain.Document {
	next := doc

	switch a := a.(type) {
	case AddProduct:
		next.Products = appendOne(doc.Products, a.Product.Clone())
	case UpdateProduct:
		products, ok := replace(doc.Products, productID, a.Product.Clone())
		if !ok {
			return doc
		}
		next.Products = products
	case DeleteProduct:
		products, ok := remove(doc.Products, func(p domain.Product) bool { return p.ID == a.ProductID })
		if !ok {
			return doc
		}
		next.Products = products
	case AddCategory:
		if a.Name == "" || slices.Contains(doc.Categories, a.Name) {
			return doc
		}
		next.Categories = appendOne(doc.Categories, a.Name)

	case AddClient:
		next.Clients = appendOne(doc.Clients, a.Client)
	case UpdateClient:
		clients, ok := replace(doc.Clients, func(c domain.Client) string { return c.ID }, a.Client)
		if !ok {
			return doc
		}
		next.Clients = clients
	case AddSupplier:
		next.Suppliers = appendOne(doc.Suppliers, a.Supplier)
	case UpdateSupplier:
		suppliers, ok := replace(doc.Suppliers, func(s domain.Supplier) string { return s.ID }, a.Supplier)
		if !ok {
			return doc
		}
		next.Suppliers = suppliers

	case AddUser:
		next.Users = appendOne(doc.Users, a.User)
	case UpdateUser:
		users, ok := replace(doc.Users, func(u domain.User) string { return u.ID }, a.User)
		if !ok {
			return doc
		}
		next.Users = users
	case DeleteUser:
		users, ok := remove(doc.Users, func(u domain.User) bool { return u.ID == a.UserID })
		if !ok {
			return doc
		}
		next.Users = users

	case CreateOrder:
		if _, exists := doc.Order(a.Order.ID); exists {
			return doc
		}
		next.Orders = appendOne(doc.Orders, a.Order.Clone())
		if a.Payment != nil {
			next.Payments = appendOne(doc.Payments, *a.Payment)
		}
		next.Products = mergeProducts(doc.Products, a.Products)
	case UpdateOrder:
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.Products = mergeProducts(doc.Products, a.Products)
		})
	case UpdateDeliveryStatus:
		return withOrder(doc, a.Order, nil)
	case CancelOrder:
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.Products = mergeProducts(doc.Products, a.Products)
		})
	case CreateReturn:
		return withOrder(doc, a.Order, func(next *domain.Document) {
			ret := a.Return
			ret.Items = slices.Clone(ret.Items)
			next.Returns = appendOne(doc.Returns, ret)
			if a.Refund != nil {
				next.Payments = appendOne(doc.Payments, *a.Refund)
			}
			next.Products = mergeProducts(doc.Products, a.Products)
		})
	case SetOrderArchived:
		return withOrder(doc, a.Order, nil)

	case AddPayment:
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.Payments = appendOne(doc.Payments, a.Payment)
		})
	case UpdatePayment:
		payments, ok := replace(doc.Payments, paymentID, a.Payment)
		if !ok {
			return doc
		}
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.Payments = payments
		})
	case DeletePayment:
		payments, ok := remove(doc.Payments, func(p domain.Payment) bool { return p.ID == a.PaymentID })
		if !ok {
			return doc
		}
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.Payments = payments
		})
	case SavePaymentSchedule:
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.PaymentSchedules = upsert(doc.PaymentSchedules, scheduleID, a.Schedule.Clone())
		})
	case MarkInstallmentPaid:
		schedules, ok := replace(doc.PaymentSchedules, scheduleID, a.Schedule.Clone())
		if !ok {
			return doc
		}
		return withOrder(doc, a.Order, func(next *domain.Document) {
			next.PaymentSchedules = schedules
			next.Payments = appendOne(doc.Payments, a.Payment)
		})

	case AddPurchaseOrders:
		if len(a.PurchaseOrders) == 0 {
			return doc
		}
		orders := make([]domain.PurchaseOrder, len(doc.PurchaseOrders), len(doc.PurchaseOrders)+len(a.PurchaseOrders))
		copy(orders, doc.PurchaseOrders)
		for _, po := range a.PurchaseOrders {
			orders = append(orders, po.Clone())
		}
		next.PurchaseOrders = orders
	case UpdatePurchaseOrder:
		orders, ok := replace(doc.PurchaseOrders, purchaseOrderID, a.PurchaseOrder.Clone())
		if !ok {
			return doc
		}
		next.PurchaseOrders = orders
	case ReceivePurchaseOrder:
		orders, ok := replace(doc.PurchaseOrders, purchaseOrderID, a.PurchaseOrder.Clone())
		if !ok {
			return doc
		}
		next.PurchaseOrders = orders
		next.Products = mergeProducts(doc.Products, a.Products)
	case AddSupplierPayment:
		orders, ok := replace(doc.PurchaseOrders, purchaseOrderID, a.PurchaseOrder.Clone())
		if !ok {
			return doc
		}
		next.PurchaseOrders = orders
		next.SupplierPayments = appendOne(doc.SupplierPayments, a.Payment)

	case UpdateBackupSettings:
		next.BackupSettings = a.Settings
	case UpdateLastBackup:
		ts := a.TimestampMillis
		next.BackupSettings.LastBackupTimestamp = &ts
	case ResetAllData:
		fresh := domain.NewDocument()
		fresh.Users = slices.Clone(doc.Users)
		fresh.Categories = slices.Clone(doc.Categories)
		fresh.BackupSettings = doc.BackupSettings
		fresh.Normalize()
		return fresh
	case RestoreData:
		restored := a.Document.Clone()
		restored.Normalize()
		return restored

	default:
		return doc
	}

	return next
}

// withOrder replaces the order with the same id and applies extra changes.
// A missing order leaves the whole document untouched.
func withOrder(doc domain.Document, order domain.Order, also func(next *domain.Document)) domain.Document {
	orders, ok := replace(doc.Orders, orderID, order.Clone())
	if !ok {
		return doc
	}
	next := doc
	next.Orders = orders
	if also != nil {
		also(&next)
	}
	return next
}

func mergeProducts(products []domain.Product, updates []domain.Product) []domain.Product {
	if len(updates) == 0 {
		return products
	}
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	out := slices.Clone(products)
	for _, update := range updates {
		if i, ok := index[update.ID]; ok {
			out[i] = update.Clone()
		}
	}
	return out
}

func replace[T any](items []T, idOf func(T) string, next T) ([]T, bool) {
	id := idOf(next)
	for i, item := range items {
		if idOf(item) == id {
			out := slices.Clone(items)
			out[i] = next
			return out, true
		}
	}
	return items, false
}

func upsert[T any](items []T, idOf func(T) string, next T) []T {
	if out, ok := replace(items, idOf, next); ok {
		return out
	}
	return appendOne(items, next)
}

func remove[T any](items []T, match func(T) bool) ([]T, bool) {
	idx := slices.IndexFunc(items, match)
	if idx < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), true
}

func appendOne[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func productID(p domain.Product) string { return p.ID }
func orderID(o domain.Order) string { return o.ID }
func paymentID(p domain.Payment) string { return p.ID }
func scheduleID(s domain.PaymentSchedule) string { return s.ID }
func purchaseOrderID(po domain.PurchaseOrder) string { return po.ID }
