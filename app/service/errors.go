package service

import "errors"

var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrOrderNotFound             = errors.New("order not found")
	ErrOrderMismatch             = errors.New("order id does not match gateway order")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrVariantUnavailable        = errors.New("product variant unavailable")
	ErrInvalidPrice              = errors.New("price cannot be represented in minor units")
	ErrGatewayUnavailable        = errors.New("payment gateway unavailable")
	ErrOrderConflict             = errors.New("order conflict")
	ErrWebhookRejected           = errors.New("webhook rejected")
	ErrLatePaymentRejected       = errors.New("payment received for an order that is no longer payable")
)
