package reducer

import "aminashop/backend/internal/domain"

// Action is a precomputed state change. Business rules run before an action
// is built; the reducer only splices its payload into the document.
type Action interface {
	Kind() string
	sealed()
}

type action struct{}

func (action) sealed() {}

type AddProduct struct {
	action
	Product domain.Product
}

type UpdateProduct struct {
	action
	Product domain.Product
}

type DeleteProduct struct {
	action
	ProductID string
}

type AddCategory struct {
	action
	Name string
}

type AddClient struct {
	action
	Client domain.Client
}

type UpdateClient struct {
	action
	Client domain.Client
}

type AddSupplier struct {
	action
	Supplier domain.Supplier
}

type UpdateSupplier struct {
	action
	Supplier domain.Supplier
}

type AddUser struct {
	action
	User domain.User
}

type UpdateUser struct {
	action
	User domain.User
}

type DeleteUser struct {
	action
	UserID string
}

// CreateOrder carries the new order with the stock it consumed.
type CreateOrder struct {
	action
	Order    domain.Order
	Payment  *domain.Payment
	Products []domain.Product
}

type UpdateOrder struct {
	action
	Order    domain.Order
	Products []domain.Product
}

type UpdateDeliveryStatus struct {
	action
	Order domain.Order
}

type CancelOrder struct {
	action
	Order    domain.Order
	Products []domain.Product
}

type CreateReturn struct {
	action
	Return   domain.ProductReturn
	Refund   *domain.Payment
	Order    domain.Order
	Products []domain.Product
}

type SetOrderArchived struct {
	action
	Order domain.Order
}

type AddPayment struct {
	action
	Payment domain.Payment
	Order   domain.Order
}

type UpdatePayment struct {
	action
	Payment domain.Payment
	Order   domain.Order
}

type DeletePayment struct {
	action
	PaymentID string
	Order     domain.Order
}

// SavePaymentSchedule inserts the schedule or replaces the one with the same id.
type SavePaymentSchedule struct {
	action
	Schedule domain.PaymentSchedule
	Order    domain.Order
}

type MarkInstallmentPaid struct {
	action
	Schedule domain.PaymentSchedule
	Payment  domain.Payment
	Order    domain.Order
}

type AddPurchaseOrders struct {
	action
	PurchaseOrders []domain.PurchaseOrder
}

type UpdatePurchaseOrder struct {
	action
	PurchaseOrder domain.PurchaseOrder
}

type ReceivePurchaseOrder struct {
	action
	PurchaseOrder domain.PurchaseOrder
	Products      []domain.Product
}

type AddSupplierPayment struct {
	action
	Payment       domain.SupplierPayment
	PurchaseOrder domain.PurchaseOrder
}

type UpdateBackupSettings struct {
	action
	Settings domain.BackupSettings
}

type UpdateLastBackup struct {
	action
	TimestampMillis int64
}

// ResetAllData clears business data and keeps users, categories and
// backup settings.
type ResetAllData struct {
	action
}

type RestoreData struct {
	action
	Document domain.Document
}

func (AddProduct) Kind() string { return "ADD_PRODUCT" }
func (UpdateProduct) Kind() string { return "UPDATE_PRODUCT" }
func (DeleteProduct) Kind() string { return "DELETE_PRODUCT" }
func (AddCategory) Kind() string { return "ADD_CATEGORY" }
func (AddClient) Kind() string { return "ADD_CLIENT" }
func (UpdateClient) Kind() string { return "UPDATE_CLIENT" }
func (AddSupplier) Kind() string { return "ADD_SUPPLIER" }
func (UpdateSupplier) Kind() string { return "UPDATE_SUPPLIER" }
func (AddUser) Kind() string { return "ADD_USER" }
func (UpdateUser) Kind() string { return "UPDATE_USER" }
func (DeleteUser) Kind() string { return "DELETE_USER" }
func (CreateOrder) Kind() string { return "CREATE_ORDER" }
func (UpdateOrder) Kind() string { return "UPDATE_ORDER" }
func (UpdateDeliveryStatus) Kind() string { return "UPDATE_ORDER_DELIVERY_STATUS" }
func (CancelOrder) Kind() string { return "CANCEL_ORDER" }
func (CreateReturn) Kind() string { return "CREATE_RETURN" }
func (SetOrderArchived) Kind() string { return "SET_ORDER_ARCHIVED" }
func (AddPayment) Kind() string { return "ADD_PAYMENT" }
func (UpdatePayment) Kind() string { return "UPDATE_PAYMENT" }
func (DeletePayment) Kind() string { return "DELETE_PAYMENT" }
func (SavePaymentSchedule) Kind() string { return "SAVE_PAYMENT_SCHEDULE" }
func (MarkInstallmentPaid) Kind() string { return "MARK_INSTALLMENT_AS_PAID" }
func (AddPurchaseOrders) Kind() string { return "ADD_PURCHASE_ORDERS" }
func (UpdatePurchaseOrder) Kind() string { return "UPDATE_PURCHASE_ORDER" }
func (ReceivePurchaseOrder) Kind() string { return "RECEIVE_PURCHASE_ORDER_ITEMS" }
func (AddSupplierPayment) Kind() string { return "ADD_SUPPLIER_PAYMENT" }
func (UpdateBackupSettings) Kind() string { return "UPDATE_BACKUP_SETTINGS" }
func (UpdateLastBackup) Kind() string { return "UPDATE_LAST_BACKUP_TIMESTAMP" }
func (ResetAllData) Kind() string { return "RESET_ALL_DATA" }
func (RestoreData) Kind() string { return "RESTORE_DATA" }
