package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

type WebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			order_id, gateway_event_id, event_type, signature, payload_json, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableStringValue(event.OrderID),
		nullableStringValue(event.GatewayEventID),
		event.EventType,
		event.Signature,
		event.PayloadJSON,
		event.Status,
		nullableStringValue(event.Error),
		utc(event.CreatedAt),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}

// IsProcessed reports whether a delivery with this gateway event id was already applied.
func (r *WebhookEventRepository) IsProcessed(ctx context.Context, gatewayEventID string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM webhook_events
		WHERE gateway_event_id = ? AND status = ?
	`, gatewayEventID, entity.WebhookStatusProcessed).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
