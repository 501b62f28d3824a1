package service

import (
	"errors"
	"fmt"

	"aminashop/backend/internal/store"
)

var (
	ErrEmptyOrder          = fmt.Errorf("%w: order needs at least one item", store.ErrInvalidTransaction)
	ErrInvalidTotal        = fmt.Errorf("%w: order total must be positive", store.ErrInvalidTransaction)
	ErrInvalidStatus       = fmt.Errorf("%w: status not allowed here", store.ErrInvalidTransaction)
	ErrOrderCancelled      = fmt.Errorf("%w: order is cancelled", store.ErrInvalidTransaction)
	ErrOrderHasPayments    = fmt.Errorf("%w: order has payments", store.ErrInvalidTransaction)
	ErrOrderHasReturns     = fmt.Errorf("%w: order has returns", store.ErrInvalidTransaction)
	ErrNegativeStock       = fmt.Errorf("%w: stock is negative", store.ErrInvalidTransaction)
	ErrPaymentOutOfRange   = fmt.Errorf("%w: amount out of range", store.ErrInvalidTransaction)
	ErrUnknownVariant      = fmt.Errorf("%w: unknown variant", store.ErrInvalidTransaction)
	ErrDuplicateVariant    = fmt.Errorf("%w: duplicate variant", store.ErrInvalidTransaction)
	ErrRefundLocked        = fmt.Errorf("%w: refund payments belong to their return", store.ErrInvalidTransaction)
	ErrAlreadyReceived     = fmt.Errorf("%w: purchase order already received", store.ErrInvalidTransaction)
	ErrReceiveExceedsOrder = fmt.Errorf("%w: received quantity exceeds ordered quantity", store.ErrInvalidTransaction)
	ErrReturnExceedsOrder  = fmt.Errorf("%w: returned quantity exceeds sold quantity", store.ErrInvalidTransaction)
	ErrInvalidInstallment  = fmt.Errorf("%w: invalid installment", store.ErrInvalidTransaction)
	ErrUnknownCategory     = fmt.Errorf("%w: unknown category", store.ErrInvalidTransaction)
	ErrDuplicateSKU        = fmt.Errorf("%w: sku already used", store.ErrInvalidTransaction)
	ErrWeakPIN             = fmt.Errorf("%w: pin too weak", store.ErrInvalidTransaction)
	ErrLastAdmin           = fmt.Errorf("%w: at least one Admin is required", store.ErrInvalidTransaction)
	ErrInvalidBackup       = fmt.Errorf("%w: invalid backup", store.ErrInvalidTransaction)
	ErrNothingToReplenish  = fmt.Errorf("%w: nothing to replenish", store.ErrInvalidTransaction)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)
