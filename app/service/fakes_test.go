package service

import (
	"context"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/repository"
	"github.com/vibast-solutions/ms-go-checkout/config"
)

type serviceOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	items  map[string][]*entity.OrderItem

	createFn func(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error
	expireFn func(ctx context.Context, cutoff, now time.Time) (int64, error)
}

func newServiceOrderRepo() *serviceOrderRepo {
	return &serviceOrderRepo{
		orders: map[string]*entity.Order{},
		items:  map[string][]*entity.OrderItem{},
	}
}

func (r *serviceOrderRepo) put(order *entity.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyItem := *order
	r.orders[order.ID] = &copyItem
}

func (r *serviceOrderRepo) get(id string) *entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.orders[id]
	if !ok {
		return nil
	}
	copyItem := *item
	return &copyItem
}

func (r *serviceOrderRepo) Create(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	if r.createFn != nil {
		return r.createFn(ctx, order, items)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return repository.ErrOrderAlreadyExists
	}
	copyItem := *order
	r.orders[order.ID] = &copyItem
	r.items[order.ID] = items
	return nil
}

func (r *serviceOrderRepo) AttachGatewayOrder(_ context.Context, orderID, gatewayOrderID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.orders {
		if id != orderID && item.GatewayOrderID != nil && *item.GatewayOrderID == gatewayOrderID {
			return repository.ErrGatewayOrderConflict
		}
	}
	item, ok := r.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if item.Status != entity.OrderStatusPendingCreation {
		return repository.ErrInvalidTransition
	}
	gw := gatewayOrderID
	item.GatewayOrderID = &gw
	item.Status = entity.OrderStatusPendingPayment
	item.UpdatedAt = now
	return nil
}

func (r *serviceOrderRepo) findByGateway(gatewayOrderID string) *entity.Order {
	for _, item := range r.orders {
		if item.GatewayOrderID != nil && *item.GatewayOrderID == gatewayOrderID {
			return item
		}
	}
	return nil
}

func (r *serviceOrderRepo) MarkCompleted(_ context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.findByGateway(gatewayOrderID)
	if item == nil {
		return false, repository.ErrOrderNotFound
	}
	switch item.Status {
	case entity.OrderStatusPendingCreation, entity.OrderStatusPendingPayment:
		pay := gatewayPaymentID
		item.Status = entity.OrderStatusCompleted
		item.GatewayPaymentID = &pay
		item.UpdatedAt = now
		return true, nil
	case entity.OrderStatusCompleted:
		if item.GatewayPaymentID != nil && *item.GatewayPaymentID == gatewayPaymentID {
			return false, nil
		}
		return false, repository.ErrOrderConflict
	default:
		return false, repository.ErrOrderNotPayable
	}
}

func (r *serviceOrderRepo) MarkFailed(_ context.Context, gatewayOrderID, gatewayPaymentID, reason string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.findByGateway(gatewayOrderID)
	if item == nil {
		return false, repository.ErrOrderNotFound
	}
	if item.Status != entity.OrderStatusPendingPayment {
		return false, nil
	}
	item.Status = entity.OrderStatusFailed
	if reason != "" {
		item.FailureReason = &reason
	}
	item.UpdatedAt = now
	return true, nil
}

func (r *serviceOrderRepo) ExpireStalePending(ctx context.Context, cutoff, now time.Time) (int64, error) {
	if r.expireFn != nil {
		return r.expireFn(ctx, cutoff, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.orders {
		if entity.IsPendingOrderStatus(item.Status) && !item.CreatedAt.After(cutoff) {
			item.Status = entity.OrderStatusExpired
			item.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (r *serviceOrderRepo) FindByID(_ context.Context, id string) (*entity.Order, error) {
	return r.get(id), nil
}

func (r *serviceOrderRepo) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.findByGateway(gatewayOrderID)
	if item == nil {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

type serviceEventRepo struct {
	mu       sync.Mutex
	events   []*entity.OrderEvent
	createFn func(ctx context.Context, event *entity.OrderEvent) error
}

func (r *serviceEventRepo) Create(ctx context.Context, event *entity.OrderEvent) error {
	if r.createFn != nil {
		return r.createFn(ctx, event)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.GatewayPaymentID != nil {
		for _, existing := range r.events {
			if existing.OrderID == event.OrderID && existing.EventType == event.EventType &&
				existing.GatewayPaymentID != nil && *existing.GatewayPaymentID == *event.GatewayPaymentID {
				return repository.ErrOrderEventExists
			}
		}
	}
	r.events = append(r.events, event)
	return nil
}

func (r *serviceEventRepo) ofType(eventType string) []*entity.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.OrderEvent, 0)
	for _, event := range r.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type serviceWebhookRepo struct {
	mu        sync.Mutex
	records   []*entity.WebhookEvent
	createFn  func(ctx context.Context, event *entity.WebhookEvent) error
	processFn func(ctx context.Context, gatewayEventID string) (bool, error)
}

func (r *serviceWebhookRepo) Create(ctx context.Context, event *entity.WebhookEvent) error {
	if r.createFn != nil {
		return r.createFn(ctx, event)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, event)
	return nil
}

func (r *serviceWebhookRepo) IsProcessed(ctx context.Context, gatewayEventID string) (bool, error) {
	if r.processFn != nil {
		return r.processFn(ctx, gatewayEventID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Status == entity.WebhookStatusProcessed && record.GatewayEventID != nil && *record.GatewayEventID == gatewayEventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *serviceWebhookRepo) last() *entity.WebhookEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	return r.records[len(r.records)-1]
}

type serviceVariantRepo struct {
	variants map[string]*entity.ProductVariant
}

func (r *serviceVariantRepo) FindByIDs(_ context.Context, ids []string) (map[string]*entity.ProductVariant, error) {
	out := make(map[string]*entity.ProductVariant, len(ids))
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type serviceGateway struct {
	keySecret     string
	webhookSecret string
	createFn      func(ctx context.Context, input *provider.CreateOrderInput) (*provider.GatewayOrder, error)
	parser        *provider.RazorpayGateway
}

func newServiceGateway() *serviceGateway {
	return &serviceGateway{
		keySecret:     "key_secret_test",
		webhookSecret: "whsec_test",
		parser:        provider.NewRazorpayGateway(provider.RazorpayConfig{}),
	}
}

func (g *serviceGateway) KeyID() string {
	return "rzp_test_key"
}

func (g *serviceGateway) CreateOrder(ctx context.Context, input *provider.CreateOrderInput) (*provider.GatewayOrder, error) {
	if g.createFn != nil {
		return g.createFn(ctx, input)
	}
	return &provider.GatewayOrder{ID: "order_ABC123", AmountMinor: input.AmountMinor, Currency: input.Currency, Status: "created"}, nil
}

func (g *serviceGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return provider.VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, g.keySecret)
}

func (g *serviceGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return provider.VerifyWebhookSignature(rawBody, signature, g.webhookSecret)
}

func (g *serviceGateway) ParseWebhook(rawBody []byte) (*provider.WebhookEvent, error) {
	return g.parser.ParseWebhook(rawBody)
}

type serviceFixture struct {
	orders   *serviceOrderRepo
	events   *serviceEventRepo
	webhooks *serviceWebhookRepo
	variants *serviceVariantRepo
	gateway  *serviceGateway
	service  *OrderService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		orders:   newServiceOrderRepo(),
		events:   &serviceEventRepo{},
		webhooks: &serviceWebhookRepo{},
		variants: &serviceVariantRepo{variants: map[string]*entity.ProductVariant{}},
		gateway:  newServiceGateway(),
	}
	f.service = NewOrderService(f.orders, f.events, f.webhooks, f.variants, f.gateway, config.OrdersConfig{
		PendingTimeout:  30 * time.Minute,
		DefaultCurrency: "INR",
	})
	return f
}

func (f *serviceFixture) seedPendingPayment(id, gatewayOrderID string, createdAt time.Time) {
	gw := gatewayOrderID
	f.orders.put(&entity.Order{
		ID:             id,
		GatewayOrderID: &gw,
		Status:         entity.OrderStatusPendingPayment,
		AmountMinor:    150000,
		Currency:       "INR",
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	})
}
