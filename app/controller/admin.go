package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/auth"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/ratelimit"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

type AdminController struct {
	orderService   *service.OrderService
	authorizer     *auth.AdminAuthorizer
	limiter        *ratelimit.Limiter
	missingSecrets []string
	logger         logrus.FieldLogger
}

func NewAdminController(
	orderService *service.OrderService,
	authorizer *auth.AdminAuthorizer,
	limiter *ratelimit.Limiter,
	missingSecrets []string,
) *AdminController {
	return &AdminController{
		orderService:   orderService,
		authorizer:     authorizer,
		limiter:        limiter,
		missingSecrets: missingSecrets,
		logger:         factory.NewModuleLogger("admin-controller"),
	}
}

// ExpireOrders checks, in order: server configuration, admin identity, rate limit.
func (c *AdminController) ExpireOrders(ctx echo.Context) error {
	logger := factory.LoggerWithContext(c.logger, ctx)

	if len(c.missingSecrets) > 0 {
		logger.WithField("missing", c.missingSecrets).Error("Expire orders refused: server configuration incomplete")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	check := c.authorizer.Check(ctx.Request().Context(), ctx.Request().Header.Get(echo.HeaderAuthorization))
	switch check.Outcome {
	case auth.AdminOK:
	case auth.AdminUnauthenticated:
		return writeError(ctx, http.StatusUnauthorized, "authentication required")
	case auth.AdminForbidden:
		logger.WithField("user_id", check.UserID).Warn("Expire orders forbidden for non-admin")
		return writeError(ctx, http.StatusForbidden, "forbidden")
	case auth.AdminProfileMissing:
		logger.WithField("user_id", check.UserID).Warn("Expire orders forbidden: profile missing")
		return writeError(ctx, http.StatusForbidden, "profile not found")
	default:
		logger.WithError(check.Err).Error("Admin check failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	identity := ratelimit.ClientIdentity(ctx.Request().Header.Get(echo.HeaderXForwardedFor))
	allowed, err := c.limiter.Allow(ctx.Request().Context(), identity)
	if err != nil {
		logger.WithError(err).Error("Rate limit store failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	if !allowed {
		logger.WithField("identity", identity).Warn("Expire orders rate limited")
		return writeError(ctx, http.StatusTooManyRequests, "Too many requests")
	}

	count, err := c.orderService.ExpireStalePending(ctx.Request().Context())
	if err != nil {
		logger.WithError(err).Error("Expire stale orders failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	logger.WithFields(logrus.Fields{"admin_id": check.UserID, "expired": count}).Info("Expired stale pending orders")
	return ctx.JSON(http.StatusOK, &types.ExpireOrdersResponse{
		Success:      true,
		ExpiredCount: count,
		Message:      fmt.Sprintf("Expired %d stale pending orders", count),
	})
}
