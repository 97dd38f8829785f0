package service

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

type verifyPaymentRequest interface {
	GetRazorpayOrderId() string
	GetRazorpayPaymentId() string
	GetRazorpaySignature() string
	GetOrderId() string
}

type VerifiedPayment struct {
	Order            *entity.Order
	GatewayPaymentID string
}

// VerifyPayment checks the browser-reported payment signature and resolves the order.
// It never writes: only the webhook settles an order.
func (s *OrderService) VerifyPayment(ctx context.Context, req verifyPaymentRequest) (*VerifiedPayment, error) {
	gatewayOrderID := strings.TrimSpace(req.GetRazorpayOrderId())
	gatewayPaymentID := strings.TrimSpace(req.GetRazorpayPaymentId())
	signature := strings.TrimSpace(req.GetRazorpaySignature())
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, ErrInvalidRequest
	}

	if !s.gateway.VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature) {
		return nil, ErrPaymentVerificationFailed
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if orderID := strings.TrimSpace(req.GetOrderId()); orderID != "" && orderID != order.ID {
		return nil, ErrOrderMismatch
	}

	return &VerifiedPayment{Order: order, GatewayPaymentID: gatewayPaymentID}, nil
}
