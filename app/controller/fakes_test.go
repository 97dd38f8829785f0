package controller

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vibast-solutions/ms-go-checkout/app/auth"
	"github.com/vibast-solutions/ms-go-checkout/app/entity"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/ratelimit"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/config"
)

const (
	testJWTSecret     = "backend-jwt-secret"
	testKeySecret     = "key_secret_test"
	testWebhookSecret = "whsec_test"
)

type controllerOrderRepo struct {
	createFn               func(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error
	attachGatewayOrderFn   func(ctx context.Context, orderID, gatewayOrderID string, now time.Time) error
	markCompletedFn        func(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) (bool, error)
	markFailedFn           func(ctx context.Context, gatewayOrderID, gatewayPaymentID, reason string, now time.Time) (bool, error)
	expireStalePendingFn   func(ctx context.Context, cutoff, now time.Time) (int64, error)
	findByIDFn             func(ctx context.Context, id string) (*entity.Order, error)
	findByGatewayOrderIDFn func(ctx context.Context, gatewayOrderID string) (*entity.Order, error)
}

func (r *controllerOrderRepo) Create(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	if r.createFn != nil {
		return r.createFn(ctx, order, items)
	}
	return nil
}

func (r *controllerOrderRepo) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string, now time.Time) error {
	if r.attachGatewayOrderFn != nil {
		return r.attachGatewayOrderFn(ctx, orderID, gatewayOrderID, now)
	}
	return nil
}

func (r *controllerOrderRepo) MarkCompleted(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) (bool, error) {
	if r.markCompletedFn != nil {
		return r.markCompletedFn(ctx, gatewayOrderID, gatewayPaymentID, now)
	}
	return true, nil
}

func (r *controllerOrderRepo) MarkFailed(ctx context.Context, gatewayOrderID, gatewayPaymentID, reason string, now time.Time) (bool, error) {
	if r.markFailedFn != nil {
		return r.markFailedFn(ctx, gatewayOrderID, gatewayPaymentID, reason, now)
	}
	return true, nil
}

func (r *controllerOrderRepo) ExpireStalePending(ctx context.Context, cutoff, now time.Time) (int64, error) {
	if r.expireStalePendingFn != nil {
		return r.expireStalePendingFn(ctx, cutoff, now)
	}
	return 0, nil
}

func (r *controllerOrderRepo) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *controllerOrderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	if r.findByGatewayOrderIDFn != nil {
		return r.findByGatewayOrderIDFn(ctx, gatewayOrderID)
	}
	return nil, nil
}

type controllerEventRepo struct {
	createFn func(ctx context.Context, event *entity.OrderEvent) error
}

func (r *controllerEventRepo) Create(ctx context.Context, event *entity.OrderEvent) error {
	if r.createFn != nil {
		return r.createFn(ctx, event)
	}
	return nil
}

type controllerWebhookRepo struct {
	isProcessedFn func(ctx context.Context, gatewayEventID string) (bool, error)
}

func (r *controllerWebhookRepo) Create(context.Context, *entity.WebhookEvent) error {
	return nil
}

func (r *controllerWebhookRepo) IsProcessed(ctx context.Context, gatewayEventID string) (bool, error) {
	if r.isProcessedFn != nil {
		return r.isProcessedFn(ctx, gatewayEventID)
	}
	return false, nil
}

type controllerVariantRepo struct {
	findByIDsFn func(ctx context.Context, ids []string) (map[string]*entity.ProductVariant, error)
}

func (r *controllerVariantRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.ProductVariant, error) {
	if r.findByIDsFn != nil {
		return r.findByIDsFn(ctx, ids)
	}
	return map[string]*entity.ProductVariant{}, nil
}

type controllerProfileRepo struct {
	profiles map[string]*entity.Profile
}

func (r *controllerProfileRepo) FindByID(_ context.Context, id string) (*entity.Profile, error) {
	return r.profiles[id], nil
}

type controllerGateway struct {
	*provider.RazorpayGateway
	createOrderFn func(ctx context.Context, input *provider.CreateOrderInput) (*provider.GatewayOrder, error)
}

func (g *controllerGateway) CreateOrder(ctx context.Context, input *provider.CreateOrderInput) (*provider.GatewayOrder, error) {
	if g.createOrderFn != nil {
		return g.createOrderFn(ctx, input)
	}
	return &provider.GatewayOrder{ID: "order_ABC123", AmountMinor: input.AmountMinor, Currency: input.Currency}, nil
}

type controllerFixture struct {
	orders   *controllerOrderRepo
	events   *controllerEventRepo
	webhooks *controllerWebhookRepo
	variants *controllerVariantRepo
	gateway  *controllerGateway
	profiles *controllerProfileRepo
	cfg      *config.Config
}

func newControllerFixture() *controllerFixture {
	return &controllerFixture{
		orders:   &controllerOrderRepo{},
		events:   &controllerEventRepo{},
		webhooks: &controllerWebhookRepo{},
		variants: &controllerVariantRepo{},
		gateway: &controllerGateway{RazorpayGateway: provider.NewRazorpayGateway(provider.RazorpayConfig{
			KeyID:         "rzp_test_key",
			KeySecret:     testKeySecret,
			WebhookSecret: testWebhookSecret,
		})},
		profiles: &controllerProfileRepo{profiles: map[string]*entity.Profile{
			"admin-1":    {ID: "admin-1", Role: entity.ProfileRoleAdmin},
			"customer-1": {ID: "customer-1", Role: "customer"},
		}},
		cfg: &config.Config{
			Backend:   config.BackendConfig{URL: "https://backend.example", AnonKey: "anon-key", JWTSecret: testJWTSecret},
			Razorpay:  config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: testKeySecret, WebhookSecret: testWebhookSecret},
			Orders:    config.OrdersConfig{PendingTimeout: 30 * time.Minute, DefaultCurrency: "INR"},
			RateLimit: config.RateLimitConfig{ExpireOrdersLimit: 20, Window: time.Minute},
		},
	}
}

func (f *controllerFixture) orderService() *service.OrderService {
	return service.NewOrderService(f.orders, f.events, f.webhooks, f.variants, f.gateway, f.cfg.Orders)
}

func (f *controllerFixture) checkoutController() *CheckoutController {
	return NewCheckoutController(f.orderService(), auth.NewTokenVerifier(testJWTSecret), f.cfg)
}

func (f *controllerFixture) webhookController() *WebhookController {
	return NewWebhookController(f.orderService())
}

func (f *controllerFixture) adminController(missingSecrets []string) *AdminController {
	tokens := auth.NewTokenVerifier(testJWTSecret)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "expire-orders", f.cfg.RateLimit.ExpireOrdersLimit, f.cfg.RateLimit.Window)
	return NewAdminController(f.orderService(), auth.NewAdminAuthorizer(tokens, f.profiles), limiter, missingSecrets)
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}
