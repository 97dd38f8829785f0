package types

type CreateOrderItem struct {
	ProductId string `json:"productId"`
	VariantId string `json:"variantId"`
	Quantity  int32  `json:"quantity"`
}

func (x *CreateOrderItem) GetProductId() string {
	if x != nil {
		return x.ProductId
	}
	return ""
}

func (x *CreateOrderItem) GetVariantId() string {
	if x != nil {
		return x.VariantId
	}
	return ""
}

func (x *CreateOrderItem) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

type CreateOrderRequest struct {
	UserId   string             `json:"-"`
	Currency string             `json:"currency,omitempty"`
	Items    []*CreateOrderItem `json:"items"`
}

func (x *CreateOrderRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *CreateOrderRequest) GetCurrency() string {
	if x != nil {
		return x.Currency
	}
	return ""
}

func (x *CreateOrderRequest) GetItems() []*CreateOrderItem {
	if x != nil {
		return x.Items
	}
	return nil
}

type VerifyPaymentRequest struct {
	RazorpayOrderId   string `json:"razorpay_order_id"`
	RazorpayPaymentId string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderId           string `json:"orderId,omitempty"`
}

func (x *VerifyPaymentRequest) GetRazorpayOrderId() string {
	if x != nil {
		return x.RazorpayOrderId
	}
	return ""
}

func (x *VerifyPaymentRequest) GetRazorpayPaymentId() string {
	if x != nil {
		return x.RazorpayPaymentId
	}
	return ""
}

func (x *VerifyPaymentRequest) GetRazorpaySignature() string {
	if x != nil {
		return x.RazorpaySignature
	}
	return ""
}

func (x *VerifyPaymentRequest) GetOrderId() string {
	if x != nil {
		return x.OrderId
	}
	return ""
}

type OrderStatusRequest struct {
	OrderId         string
	RazorpayOrderId string
}

func (x *OrderStatusRequest) GetOrderId() string {
	if x != nil {
		return x.OrderId
	}
	return ""
}

func (x *OrderStatusRequest) GetRazorpayOrderId() string {
	if x != nil {
		return x.RazorpayOrderId
	}
	return ""
}

type RazorpayWebhookRequest struct {
	Signature string
	EventId   string
	Payload   []byte
}

func (x *RazorpayWebhookRequest) GetSignature() string {
	if x != nil {
		return x.Signature
	}
	return ""
}

func (x *RazorpayWebhookRequest) GetEventId() string {
	if x != nil {
		return x.EventId
	}
	return ""
}

func (x *RazorpayWebhookRequest) GetPayload() []byte {
	if x != nil {
		return x.Payload
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type VerificationFailedResponse struct {
	Error    string `json:"error"`
	Verified bool   `json:"verified"`
}

type CreateOrderResponse struct {
	OrderId         string `json:"orderId"`
	RazorpayOrderId string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyId           string `json:"keyId"`
}

type VerifyPaymentResponse struct {
	Ok                bool   `json:"ok"`
	OrderId           string `json:"orderId"`
	RazorpayOrderId   string `json:"razorpayOrderId"`
	RazorpayPaymentId string `json:"razorpayPaymentId"`
	Status            string `json:"status"`
}

type OrderStatusResponse struct {
	OrderId           string  `json:"orderId"`
	Status            string  `json:"status"`
	RazorpayOrderId   *string `json:"razorpayOrderId"`
	RazorpayPaymentId *string `json:"razorpayPaymentId"`
	CreatedAt         string  `json:"createdAt"`
}

type ExpireOrdersResponse struct {
	Success      bool   `json:"success"`
	ExpiredCount int64  `json:"expiredCount"`
	Message      string `json:"message"`
}

type WebhookResponse struct {
	Message string `json:"message"`
}

type CheckoutConfigResponse struct {
	RazorpayKeyId  string `json:"razorpayKeyId"`
	BackendUrl     string `json:"backendUrl"`
	BackendAnonKey string `json:"backendAnonKey"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
