package entity

import "time"

const (
	OrderStatusPendingCreation = "pending_creation"
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusCompleted       = "completed"
	OrderStatusFailed          = "failed"
	OrderStatusExpired         = "expired"
)

type Order struct {
	ID     string
	UserID *string

	GatewayOrderID   *string
	GatewayPaymentID *string

	Status        string
	AmountMinor   int64
	Currency      string
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a price snapshot taken when the order was created.
type OrderItem struct {
	ID uint64

	OrderID   string
	ProductID string
	VariantID string
	Quantity  int32

	UnitPriceMinor int64

	CreatedAt time.Time
}

func (o *Order) IsTerminal() bool {
	return IsTerminalOrderStatus(o.Status)
}

func IsTerminalOrderStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusExpired:
		return true
	default:
		return false
	}
}

func IsPendingOrderStatus(status string) bool {
	return status == OrderStatusPendingCreation || status == OrderStatusPendingPayment
}
