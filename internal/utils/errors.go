package utils

import "errors"

// Common application errors used across services. The text doubles as the
// API error code.
var (
	ErrNotFound                = errors.New("NOT_FOUND")
	ErrProductNotFound         = errors.New("PRODUCT_NOT_FOUND")
	ErrProductUnavailable      = errors.New("PRODUCT_UNAVAILABLE")
	ErrOutOfStock              = errors.New("OUT_OF_STOCK")
	ErrInvalidWeight           = errors.New("INVALID_WEIGHT")
	ErrPincodeNotServed        = errors.New("PINCODE_NOT_SERVED")
	ErrOrderNotFound           = errors.New("ORDER_NOT_FOUND")
	ErrInvalidStatusTransition = errors.New("INVALID_STATUS_TRANSITION")
	ErrInvalidTrackingStep     = errors.New("INVALID_TRACKING_STEP")
	ErrEmptyCart               = errors.New("EMPTY_CART")
	ErrPaymentUnavailable      = errors.New("PAYMENT_UNAVAILABLE")
	ErrPromoNotFound           = errors.New("PROMO_NOT_FOUND")
	ErrPromoExists             = errors.New("PROMO_EXISTS")
	ErrCustomRequestNotFound   = errors.New("CUSTOM_REQUEST_NOT_FOUND")
	ErrUserNotFound            = errors.New("USER_NOT_FOUND")
	ErrNotificationNotFound    = errors.New("NOTIFICATION_NOT_FOUND")
	ErrInvalidCredentials      = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive         = errors.New("ACCOUNT_INACTIVE")
	ErrInvalidToken            = errors.New("INVALID_TOKEN")
	ErrStorageDisabled         = errors.New("STORAGE_DISABLED")
)
