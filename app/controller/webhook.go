package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

type WebhookController struct {
	orderService *service.OrderService
	logger       logrus.FieldLogger
}

func NewWebhookController(orderService *service.OrderService) *WebhookController {
	return &WebhookController{
		orderService: orderService,
		logger:       factory.NewModuleLogger("webhook-controller"),
	}
}

// HandleRazorpayWebhook answers 2xx once a delivery is applied or already recorded.
// The gateway retries every other status, so a late payment gets one 409 and its
// redeliveries are acknowledged as duplicates.
func (c *WebhookController) HandleRazorpayWebhook(ctx echo.Context) error {
	req, err := types.NewRazorpayWebhookRequestFromContext(ctx)
	if err != nil {
		if errors.Is(err, types.ErrBodyTooLarge) {
			return writeError(ctx, http.StatusRequestEntityTooLarge, err.Error())
		}
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	logger := factory.LoggerWithContext(c.logger, ctx).WithField("event_id", req.GetEventId())
	result, err := c.orderService.HandleWebhook(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookRejected):
			logger.WithError(err).Warn("Webhook rejected")
			return writeError(ctx, http.StatusBadRequest, "webhook rejected")
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Warn("Webhook for unknown order")
			return writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrLatePaymentRejected):
			logger.WithError(err).Error("Payment captured for an order that is no longer payable")
			return writeError(ctx, http.StatusConflict, "order is no longer payable")
		case errors.Is(err, service.ErrOrderConflict):
			logger.WithError(err).Error("Webhook payment conflicts with completed order")
			return writeError(ctx, http.StatusConflict, "order conflict")
		default:
			logger.WithError(err).Error("Handle webhook failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	logger.WithFields(logrus.Fields{
		"event":        result.EventType,
		"order_id":     result.OrderID,
		"status":       result.Status,
		"transitioned": result.Transitioned,
		"duplicate":    result.Duplicate,
	}).Info("Webhook processed")

	switch {
	case result.Duplicate:
		return ctx.JSON(http.StatusOK, &types.WebhookResponse{Message: "Webhook already processed"})
	case result.Ignored:
		return ctx.JSON(http.StatusOK, &types.WebhookResponse{Message: "Webhook event ignored"})
	default:
		return ctx.JSON(http.StatusOK, &types.WebhookResponse{Message: "Webhook processed"})
	}
}
