package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

// ErrOrderEventExists is returned when the order already has an event of the same type
// for the same gateway payment.
var ErrOrderEventExists = errors.New("order event already recorded for this payment")

type OrderEventRepository struct {
	db DBTX
}

func NewOrderEventRepository(db DBTX) *OrderEventRepository {
	return &OrderEventRepository{db: db}
}

func (r *OrderEventRepository) Create(ctx context.Context, event *entity.OrderEvent) error {
	query := `
		INSERT INTO order_events (
			order_id, event_type, old_status, new_status, gateway_event_id, gateway_payment_id, payload_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.OrderID,
		event.EventType,
		nullableStringValue(event.OldStatus),
		event.NewStatus,
		nullableStringValue(event.GatewayEventID),
		nullableStringValue(event.GatewayPaymentID),
		nullableStringValue(event.PayloadJSON),
		utc(event.CreatedAt),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderEventExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}

func (r *OrderEventRepository) ListByOrderID(ctx context.Context, orderID string) ([]*entity.OrderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, event_type, old_status, new_status, gateway_event_id, gateway_payment_id, payload_json, created_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*entity.OrderEvent, 0)
	for rows.Next() {
		event := &entity.OrderEvent{}
		var oldStatus, gatewayEventID, gatewayPaymentID, payloadJSON sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.EventType,
			&oldStatus,
			&event.NewStatus,
			&gatewayEventID,
			&gatewayPaymentID,
			&payloadJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		event.OldStatus = stringPtrFromNull(oldStatus)
		event.GatewayEventID = stringPtrFromNull(gatewayEventID)
		event.GatewayPaymentID = stringPtrFromNull(gatewayPaymentID)
		event.PayloadJSON = stringPtrFromNull(payloadJSON)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
