package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

func OrderToStatusResponse(item *entity.Order) *types.OrderStatusResponse {
	if item == nil {
		return nil
	}

	return &types.OrderStatusResponse{
		OrderId:           item.ID,
		Status:            item.Status,
		RazorpayOrderId:   cloneString(item.GatewayOrderID),
		RazorpayPaymentId: cloneString(item.GatewayPaymentID),
		CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func OrderToCreateResponse(item *entity.Order, keyID string) *types.CreateOrderResponse {
	if item == nil {
		return nil
	}

	return &types.CreateOrderResponse{
		OrderId:         item.ID,
		RazorpayOrderId: derefString(item.GatewayOrderID),
		Amount:          item.AmountMinor,
		Currency:        item.Currency,
		KeyId:           keyID,
	}
}

func VerifiedPaymentToResponse(item *service.VerifiedPayment) *types.VerifyPaymentResponse {
	if item == nil || item.Order == nil {
		return nil
	}

	return &types.VerifyPaymentResponse{
		Ok:                true,
		OrderId:           item.Order.ID,
		RazorpayOrderId:   derefString(item.Order.GatewayOrderID),
		RazorpayPaymentId: item.GatewayPaymentID,
		Status:            item.Order.Status,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
