package provider

import "errors"

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

const (
	WebhookActionIgnore = iota
	WebhookActionComplete
	WebhookActionFail
)

type CreateOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

// WebhookEvent is the subset of a gateway notification the order flow acts on.
type WebhookEvent struct {
	EventType        string
	GatewayOrderID   string
	GatewayPaymentID string
	ErrorDescription string
	Action           int
}
