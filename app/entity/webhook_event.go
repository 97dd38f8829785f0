package entity

import "time"

const (
	WebhookStatusProcessed = "processed"
	WebhookStatusRejected  = "rejected"
	WebhookStatusDuplicate = "duplicate"
)

type WebhookEvent struct {
	ID uint64

	OrderID        *string
	GatewayEventID *string

	EventType   string
	Signature   string
	PayloadJSON string
	Status      string
	Error       *string

	CreatedAt time.Time
}
