package types

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	maxBodyBytes = 1 << 20

	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderRazorpayEventID   = "X-Razorpay-Event-Id"
)

var ErrBodyTooLarge = errors.New("request body too large")

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	rawBody, err := readBody(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateJSONSchema(createOrderSchema, rawBody); err != nil {
		return nil, err
	}

	var body CreateOrderRequest
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, err
	}

	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	for _, item := range body.Items {
		item.ProductId = strings.TrimSpace(item.ProductId)
		item.VariantId = strings.TrimSpace(item.VariantId)
	}

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if strings.TrimSpace(r.GetUserId()) == "" {
		return errors.New("user is required")
	}
	if len(r.GetItems()) == 0 {
		return errors.New("items are required")
	}
	if c := r.GetCurrency(); c != "" && len(c) != 3 {
		return errors.New("currency must be 3 letters")
	}
	for _, item := range r.GetItems() {
		if item.GetProductId() == "" || item.GetVariantId() == "" {
			return errors.New("productId and variantId are required")
		}
		if item.GetQuantity() <= 0 {
			return errors.New("quantity must be > 0")
		}
	}
	return nil
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	rawBody, err := readBody(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateJSONSchema(verifyPaymentSchema, rawBody); err != nil {
		return nil, err
	}

	var body VerifyPaymentRequest
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, err
	}

	body.RazorpayOrderId = strings.TrimSpace(body.RazorpayOrderId)
	body.RazorpayPaymentId = strings.TrimSpace(body.RazorpayPaymentId)
	body.RazorpaySignature = strings.TrimSpace(body.RazorpaySignature)
	body.OrderId = strings.TrimSpace(body.OrderId)

	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.GetRazorpayOrderId() == "" {
		return errors.New("razorpay_order_id is required")
	}
	if r.GetRazorpayPaymentId() == "" {
		return errors.New("razorpay_payment_id is required")
	}
	if r.GetRazorpaySignature() == "" {
		return errors.New("razorpay_signature is required")
	}
	if r.GetOrderId() != "" && !isUUID(r.GetOrderId()) {
		return errors.New("orderId must be a valid UUID")
	}
	return nil
}

func NewOrderStatusRequestFromContext(ctx echo.Context) (*OrderStatusRequest, error) {
	return &OrderStatusRequest{
		OrderId:         strings.TrimSpace(ctx.QueryParam("orderId")),
		RazorpayOrderId: strings.TrimSpace(ctx.QueryParam("razorpayOrderId")),
	}, nil
}

func (r *OrderStatusRequest) Validate() error {
	if r.GetOrderId() == "" && r.GetRazorpayOrderId() == "" {
		return errors.New("orderId or razorpayOrderId is required")
	}
	if r.GetOrderId() != "" && !isUUID(r.GetOrderId()) {
		return errors.New("orderId must be a valid UUID")
	}
	return nil
}

// NewRazorpayWebhookRequestFromContext keeps the body bytes exactly as received so the
// signature can be checked against them.
func NewRazorpayWebhookRequestFromContext(ctx echo.Context) (*RazorpayWebhookRequest, error) {
	rawBody, err := readBody(ctx)
	if err != nil {
		return nil, err
	}

	return &RazorpayWebhookRequest{
		Signature: strings.TrimSpace(ctx.Request().Header.Get(HeaderRazorpaySignature)),
		EventId:   strings.TrimSpace(ctx.Request().Header.Get(HeaderRazorpayEventID)),
		Payload:   rawBody,
	}, nil
}

// Validate leaves the signature to the service so unsigned deliveries are still recorded.
func (r *RazorpayWebhookRequest) Validate() error {
	if len(r.GetPayload()) == 0 {
		return errors.New("payload is required")
	}
	return nil
}

func readBody(ctx echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
