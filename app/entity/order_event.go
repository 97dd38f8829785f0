package entity

import "time"

const (
	OrderEventCreated             = "order_created"
	OrderEventGatewayAttached     = "gateway_order_attached"
	OrderEventCompleted           = "order_completed"
	OrderEventFailed              = "order_failed"
	OrderEventLatePaymentRejected = "late_payment_rejected"
)

type OrderEvent struct {
	ID uint64

	OrderID string

	EventType string

	OldStatus *string
	NewStatus string

	GatewayEventID   *string
	GatewayPaymentID *string
	PayloadJSON      *string

	CreatedAt time.Time
}
