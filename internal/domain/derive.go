package domain

// DerivePaymentStatus is the only writer of an order's payment status outside
// cancellation. refunded is true once any refund has been recorded on the order.
func DerivePaymentStatus(paid, total int64, refunded bool) PaymentStatus {
	switch {
	case total <= 0:
		return PaymentRefunded
	case paid >= total:
		return PaymentPaid
	case paid > 0 && refunded:
		return PaymentPartiallyRefunded
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

func DerivePurchaseOrderPaymentStatus(paid, total int64) PaymentStatus {
	switch {
	case paid >= total && total > 0:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// DerivePurchaseOrderStatus keeps current when nothing has been received yet.
func DerivePurchaseOrderStatus(items []PurchaseOrderItem, current PurchaseOrderStatus) PurchaseOrderStatus {
	if len(items) == 0 {
		return current
	}
	complete, started := true, false
	for _, item := range items {
		if item.QuantityReceived < item.Quantity {
			complete = false
		}
		if item.QuantityReceived > 0 {
			started = true
		}
	}
	switch {
	case complete:
		return PurchaseOrderReceived
	case started:
		return PurchaseOrderPartiallyReceived
	default:
		return current
	}
}

func DeriveReturnDeliveryStatus(returnedQty, orderedQty int, current DeliveryStatus) DeliveryStatus {
	switch {
	case orderedQty > 0 && returnedQty >= orderedQty:
		return DeliveryReturned
	case returnedQty > 0:
		return DeliveryPartiallyReturned
	default:
		return current
	}
}
