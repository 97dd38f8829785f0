package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type RazorpayConfig struct {
	KeyID             string
	KeySecret         string
	WebhookSecret     string
	APIBaseURL        string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
}

type RazorpayGateway struct {
	cfg     RazorpayConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewRazorpayGateway(cfg RazorpayConfig) *RazorpayGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.razorpay.com"
	}

	return &RazorpayGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (g *RazorpayGateway) KeyID() string {
	return g.cfg.KeyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, input *CreateOrderInput) (*GatewayOrder, error) {
	if strings.TrimSpace(g.cfg.KeyID) == "" || strings.TrimSpace(g.cfg.KeySecret) == "" {
		return nil, ErrGatewayNotConfigured
	}

	payload := map[string]interface{}{
		"amount":   input.AmountMinor,
		"currency": strings.ToUpper(input.Currency),
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		payload["notes"] = input.Notes
	}

	body, err := g.postJSON(ctx, "/v1/orders", payload)
	if err != nil {
		return nil, err
	}

	var order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, err
	}
	if strings.TrimSpace(order.ID) == "" {
		return nil, fmt.Errorf("razorpay order id missing in response")
	}

	return &GatewayOrder{
		ID:          strings.TrimSpace(order.ID),
		AmountMinor: order.Amount,
		Currency:    order.Currency,
		Status:      order.Status,
	}, nil
}

func (g *RazorpayGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, g.cfg.KeySecret)
}

func (g *RazorpayGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifyWebhookSignature(rawBody, signature, g.cfg.WebhookSecret)
}

func (g *RazorpayGateway) ParseWebhook(rawBody []byte) (*WebhookEvent, error) {
	var event struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID               string `json:"id"`
					OrderID          string `json:"order_id"`
					Status           string `json:"status"`
					ErrorDescription string `json:"error_description"`
				} `json:"entity"`
			} `json:"payment"`
			Order struct {
				Entity struct {
					ID string `json:"id"`
				} `json:"entity"`
			} `json:"order"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, err
	}

	payment := event.Payload.Payment.Entity
	result := &WebhookEvent{
		EventType:        strings.TrimSpace(event.Event),
		GatewayOrderID:   strings.TrimSpace(payment.OrderID),
		GatewayPaymentID: strings.TrimSpace(payment.ID),
		ErrorDescription: strings.TrimSpace(payment.ErrorDescription),
	}
	if result.GatewayOrderID == "" {
		result.GatewayOrderID = strings.TrimSpace(event.Payload.Order.Entity.ID)
	}

	switch result.EventType {
	case "payment.captured", "order.paid":
		result.Action = WebhookActionComplete
	case "payment.failed":
		result.Action = WebhookActionFail
	default:
		result.Action = WebhookActionIgnore
	}

	return result, nil
}

func (g *RazorpayGateway) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIBaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("razorpay request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}

	return body, nil
}
