package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/auth"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/mapper"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
	"github.com/vibast-solutions/ms-go-checkout/config"
)

type CheckoutController struct {
	orderService *service.OrderService
	tokens       *auth.TokenVerifier
	publicConfig types.CheckoutConfigResponse
	logger       logrus.FieldLogger
}

func NewCheckoutController(orderService *service.OrderService, tokens *auth.TokenVerifier, cfg *config.Config) *CheckoutController {
	return &CheckoutController{
		orderService: orderService,
		tokens:       tokens,
		publicConfig: types.CheckoutConfigResponse{
			RazorpayKeyId:  cfg.Razorpay.KeyID,
			BackendUrl:     cfg.Backend.URL,
			BackendAnonKey: cfg.Backend.AnonKey,
		},
		logger: factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// CheckoutConfig exposes only values that are safe to ship to the browser.
func (c *CheckoutController) CheckoutConfig(ctx echo.Context) error {
	cfg := c.publicConfig
	return ctx.JSON(http.StatusOK, &cfg)
}

func (c *CheckoutController) CreateOrder(ctx echo.Context) error {
	userID, err := c.tokens.UserIDFromHeader(ctx.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return writeError(ctx, http.StatusUnauthorized, "authentication required")
	}

	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}
	req.UserId = userID
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.CreateOrder(ctx.Request().Context(), req)
	if err != nil {
		logger := factory.LoggerWithContext(c.logger, ctx).WithField("user_id", userID)
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrVariantUnavailable), errors.Is(err, service.ErrInvalidPrice):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderConflict):
			logger.WithError(err).Warn("Create order conflict")
			return writeError(ctx, http.StatusConflict, "order conflict")
		case errors.Is(err, service.ErrGatewayUnavailable):
			logger.WithError(err).Error("Gateway order creation failed")
			return writeError(ctx, http.StatusBadGateway, "payment gateway unavailable")
		default:
			logger.WithError(err).Error("Create order failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, mapper.OrderToCreateResponse(order, c.orderService.GatewayKeyID()))
}

func (c *CheckoutController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		if errors.Is(err, types.ErrBodyTooLarge) {
			return writeError(ctx, http.StatusRequestEntityTooLarge, err.Error())
		}
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	verified, err := c.orderService.VerifyPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentVerificationFailed):
			factory.LoggerWithContext(c.logger, ctx).WithField("razorpay_order_id", req.GetRazorpayOrderId()).Warn("Payment signature mismatch")
			return ctx.JSON(http.StatusBadRequest, &types.VerificationFailedResponse{Error: "Payment verification failed", Verified: false})
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrOrderMismatch):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return writeError(ctx, http.StatusNotFound, "order not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Verify payment failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.VerifiedPaymentToResponse(verified))
}

func (c *CheckoutController) GetOrderStatus(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	req, err := types.NewOrderStatusRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.GetOrderStatus(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return writeError(ctx, http.StatusNotFound, "order not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get order status failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.OrderToStatusResponse(order))
}

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
