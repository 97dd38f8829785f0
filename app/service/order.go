package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-checkout/app/entity"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/repository"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
	"github.com/vibast-solutions/ms-go-checkout/config"
)

const defaultPendingTimeout = 30 * time.Minute

var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
}

type createOrderRequest interface {
	GetUserId() string
	GetCurrency() string
	GetItems() []*types.CreateOrderItem
}

type orderStatusRequest interface {
	GetOrderId() string
	GetRazorpayOrderId() string
}

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error
	AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string, now time.Time) error
	MarkCompleted(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, gatewayOrderID, gatewayPaymentID, reason string, now time.Time) (bool, error)
	ExpireStalePending(ctx context.Context, cutoff, now time.Time) (int64, error)
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error)
}

type orderEventRepository interface {
	Create(ctx context.Context, event *entity.OrderEvent) error
}

type webhookEventRepository interface {
	Create(ctx context.Context, event *entity.WebhookEvent) error
	IsProcessed(ctx context.Context, gatewayEventID string) (bool, error)
}

type productVariantRepository interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*entity.ProductVariant, error)
}

type paymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, input *provider.CreateOrderInput) (*provider.GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	VerifyWebhookSignature(rawBody []byte, signature string) bool
	ParseWebhook(rawBody []byte) (*provider.WebhookEvent, error)
}

type OrderService struct {
	orderRepo   orderRepository
	eventRepo   orderEventRepository
	webhookRepo webhookEventRepository
	variantRepo productVariantRepository
	gateway     paymentGateway
	ordersCfg   config.OrdersConfig
}

func NewOrderService(
	orderRepo orderRepository,
	eventRepo orderEventRepository,
	webhookRepo webhookEventRepository,
	variantRepo productVariantRepository,
	gateway paymentGateway,
	ordersCfg config.OrdersConfig,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		webhookRepo: webhookRepo,
		variantRepo: variantRepo,
		gateway:     gateway,
		ordersCfg:   ordersCfg,
	}
}

// CreateOrder snapshots item prices, stores the order, and opens the matching gateway
// order. A gateway failure leaves the order in pending_creation for the sweep to expire.
func (s *OrderService) CreateOrder(ctx context.Context, req createOrderRequest) (*entity.Order, error) {
	userID := strings.TrimSpace(req.GetUserId())
	if userID == "" || len(req.GetItems()) == 0 {
		return nil, ErrInvalidRequest
	}

	currency := strings.ToUpper(strings.TrimSpace(req.GetCurrency()))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(s.ordersCfg.DefaultCurrency))
	}

	variantIDs := make([]string, 0, len(req.GetItems()))
	for _, item := range req.GetItems() {
		if item == nil || item.GetQuantity() <= 0 || strings.TrimSpace(item.GetVariantId()) == "" {
			return nil, ErrInvalidRequest
		}
		variantIDs = append(variantIDs, strings.TrimSpace(item.GetVariantId()))
	}

	variants, err := s.variantRepo.FindByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:        uuid.NewString(),
		UserID:    &userID,
		Status:    entity.OrderStatusPendingCreation,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]*entity.OrderItem, 0, len(req.GetItems()))
	for _, item := range req.GetItems() {
		variantID := strings.TrimSpace(item.GetVariantId())
		variant, ok := variants[variantID]
		if !ok || !variant.Active || variant.ProductID != strings.TrimSpace(item.GetProductId()) {
			return nil, fmt.Errorf("%w: %s", ErrVariantUnavailable, variantID)
		}
		if !strings.EqualFold(variant.Currency, currency) {
			return nil, fmt.Errorf("%w: variant %s is priced in %s", ErrInvalidRequest, variantID, variant.Currency)
		}

		unitPrice, err := toMinorUnits(variant.Price, currency)
		if err != nil {
			return nil, err
		}

		order.AmountMinor += unitPrice * int64(item.GetQuantity())
		items = append(items, &entity.OrderItem{
			OrderID:        order.ID,
			ProductID:      variant.ProductID,
			VariantID:      variant.ID,
			Quantity:       item.GetQuantity(),
			UnitPriceMinor: unitPrice,
			CreatedAt:      now,
		})
	}
	if order.AmountMinor <= 0 {
		return nil, ErrInvalidPrice
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:   order.ID,
		EventType: entity.OrderEventCreated,
		NewStatus: order.Status,
		CreatedAt: now,
	})

	gatewayOrder, err := s.gateway.CreateOrder(ctx, &provider.CreateOrderInput{
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		Receipt:     order.ID,
		Notes:       map[string]string{"order_id": order.ID, "user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	attachedAt := time.Now().UTC()
	if err := s.orderRepo.AttachGatewayOrder(ctx, order.ID, gatewayOrder.ID, attachedAt); err != nil {
		if errors.Is(err, repository.ErrGatewayOrderConflict) || errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: %v", ErrOrderConflict, err)
		}
		return nil, err
	}

	oldStatus := order.Status
	order.GatewayOrderID = &gatewayOrder.ID
	order.Status = entity.OrderStatusPendingPayment
	order.UpdatedAt = attachedAt

	_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:   order.ID,
		EventType: entity.OrderEventGatewayAttached,
		OldStatus: &oldStatus,
		NewStatus: order.Status,
		CreatedAt: attachedAt,
	})

	return order, nil
}

// GetOrderStatus reads the latest committed order state. orderId wins when both
// identifiers are supplied.
func (s *OrderService) GetOrderStatus(ctx context.Context, req orderStatusRequest) (*entity.Order, error) {
	orderID := strings.TrimSpace(req.GetOrderId())
	gatewayOrderID := strings.TrimSpace(req.GetRazorpayOrderId())

	var (
		order *entity.Order
		err   error
	)
	switch {
	case orderID != "":
		order, err = s.orderRepo.FindByID(ctx, orderID)
	case gatewayOrderID != "":
		order, err = s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	default:
		return nil, ErrInvalidRequest
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GatewayKeyID() string {
	return s.gateway.KeyID()
}

func (s *OrderService) pendingTimeout() time.Duration {
	if s.ordersCfg.PendingTimeout > 0 {
		return s.ordersCfg.PendingTimeout
	}
	return defaultPendingTimeout
}

func toMinorUnits(price decimal.Decimal, currency string) (int64, error) {
	exponent := int32(2)
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		exponent = 0
	}

	minor := price.Shift(exponent)
	if !minor.IsInteger() || minor.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrInvalidPrice, price.String(), currency)
	}
	return minor.IntPart(), nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
