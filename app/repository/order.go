package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderAlreadyExists   = errors.New("order already exists")
	ErrGatewayOrderConflict = errors.New("gateway order id already attached to another order")
	ErrOrderConflict        = errors.New("order already completed with a different payment")
	ErrOrderNotPayable      = errors.New("order is in a terminal state and cannot be completed")
	ErrInvalidTransition    = errors.New("invalid order status transition")
)

const orderColumns = `
	id, user_id, gateway_order_id, gateway_payment_id, status,
	amount_minor, currency, failure_reason, created_at, updated_at
`

// OrderRepository is the elevated-privilege access path to orders. It bypasses
// row-level policies, so it is only ever constructed server-side.
type OrderRepository struct {
	db TxDB
}

func NewOrderRepository(db TxDB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, gateway_order_id, gateway_payment_id, status,
			amount_minor, currency, failure_reason, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		order.ID,
		nullableStringValue(order.UserID),
		nullableStringValue(order.GatewayOrderID),
		nullableStringValue(order.GatewayPaymentID),
		order.Status,
		order.AmountMinor,
		order.Currency,
		nullableStringValue(order.FailureReason),
		utc(order.CreatedAt),
		utc(order.UpdatedAt),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	for _, item := range items {
		item.OrderID = order.ID
		result, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price_minor, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Quantity,
			item.UnitPriceMinor,
			utc(item.CreatedAt),
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = uint64(id)
	}

	return tx.Commit()
}

// AttachGatewayOrder moves a pending_creation order to pending_payment with its gateway
// order id. The unique index on gateway_order_id detects a second order claiming the
// same gateway id.
func (r *OrderRepository) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string, now time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			gateway_order_id = ?,
			status = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`,
		gatewayOrderID,
		entity.OrderStatusPendingPayment,
		utc(now),
		orderID,
		entity.OrderStatusPendingCreation,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrGatewayOrderConflict
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrOrderNotFound
	}
	if current.GatewayOrderID != nil && *current.GatewayOrderID == gatewayOrderID {
		return nil
	}
	return ErrInvalidTransition
}

// MarkCompleted is the authoritative settlement write. The returned flag reports
// whether this call performed the transition; a repeated call with the same ids
// returns false and no error.
func (r *OrderRepository) MarkCompleted(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = ?,
			gateway_payment_id = ?,
			updated_at = ?
		WHERE gateway_order_id = ? AND status IN (?, ?)
	`,
		entity.OrderStatusCompleted,
		gatewayPaymentID,
		utc(now),
		gatewayOrderID,
		entity.OrderStatusPendingCreation,
		entity.OrderStatusPendingPayment,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}

	current, err := r.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, ErrOrderNotFound
	}

	switch current.Status {
	case entity.OrderStatusCompleted:
		if current.GatewayPaymentID != nil && *current.GatewayPaymentID == gatewayPaymentID {
			return false, nil
		}
		return false, ErrOrderConflict
	case entity.OrderStatusExpired, entity.OrderStatusFailed:
		return false, ErrOrderNotPayable
	default:
		return false, ErrInvalidTransition
	}
}

// MarkFailed records an explicit gateway failure. Only pending_payment orders move to
// failed; for any other state the call is a no-op reporting false.
func (r *OrderRepository) MarkFailed(ctx context.Context, gatewayOrderID, gatewayPaymentID, reason string, now time.Time) (bool, error) {
	var failureReason *string
	if reason != "" {
		failureReason = &reason
	}
	var paymentID *string
	if gatewayPaymentID != "" {
		paymentID = &gatewayPaymentID
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = ?,
			gateway_payment_id = ?,
			failure_reason = ?,
			updated_at = ?
		WHERE gateway_order_id = ? AND status = ?
	`,
		entity.OrderStatusFailed,
		nullableStringValue(paymentID),
		nullableStringValue(failureReason),
		utc(now),
		gatewayOrderID,
		entity.OrderStatusPendingPayment,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}

	current, err := r.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, ErrOrderNotFound
	}
	return false, nil
}

// ExpireStalePending expires every pending order created at or before cutoff in one
// set-based statement. The status predicate keeps it from overwriting a completion
// that committed first.
func (r *OrderRepository) ExpireStalePending(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = ?,
			updated_at = ?
		WHERE status IN (?, ?)
		  AND created_at <= ?
	`,
		entity.OrderStatusExpired,
		utc(now),
		entity.OrderStatusPendingCreation,
		entity.OrderStatusPendingPayment,
		utc(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order := &entity.Order{}
	if err := scanOrder(r.db.QueryRowContext(ctx, query, id), order); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = ? LIMIT 1`

	order := &entity.Order{}
	if err := scanOrder(r.db.QueryRowContext(ctx, query, gatewayOrderID), order); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, quantity, unit_price_minor, created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.OrderItem, 0)
	for rows.Next() {
		item := &entity.OrderItem{}
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.Quantity,
			&item.UnitPriceMinor,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanOrder(scan rowScanner, order *entity.Order) error {
	var userID sql.NullString
	var gatewayOrderID sql.NullString
	var gatewayPaymentID sql.NullString
	var failureReason sql.NullString

	err := scan.Scan(
		&order.ID,
		&userID,
		&gatewayOrderID,
		&gatewayPaymentID,
		&order.Status,
		&order.AmountMinor,
		&order.Currency,
		&failureReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	order.UserID = stringPtrFromNull(userID)
	order.GatewayOrderID = stringPtrFromNull(gatewayOrderID)
	order.GatewayPaymentID = stringPtrFromNull(gatewayPaymentID)
	order.FailureReason = stringPtrFromNull(failureReason)

	return nil
}
