package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-checkout/app/auth"
	"github.com/vibast-solutions/ms-go-checkout/app/controller"
	checkoutgrpc "github.com/vibast-solutions/ms-go-checkout/app/grpc"
	"github.com/vibast-solutions/ms-go-checkout/app/ratelimit"
	"github.com/vibast-solutions/ms-go-checkout/config"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC health servers for the checkout service.",
	Run:   runServe,
}

type controllers struct {
	checkout *controller.CheckoutController
	webhook  *controller.WebhookController
	admin    *controller.AdminController
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	app, cleanup := mustCreateApplication()
	defer cleanup()
	cfg := app.cfg

	if missing := cfg.MissingAdminSecrets(); len(missing) > 0 {
		logrus.WithField("missing", missing).Warn("Admin endpoints will refuse requests until configuration is complete")
	}
	if strings.TrimSpace(cfg.Razorpay.WebhookSecret) == "" {
		logrus.Warn("RAZORPAY_WEBHOOK_SECRET is not set; every webhook will be rejected")
	}

	tokens := auth.NewTokenVerifier(cfg.Backend.JWTSecret)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "expire-orders", cfg.RateLimit.ExpireOrdersLimit, cfg.RateLimit.Window)

	ctrls := controllers{
		checkout: controller.NewCheckoutController(app.orderService, tokens, cfg),
		webhook:  controller.NewWebhookController(app.orderService),
		admin: controller.NewAdminController(
			app.orderService,
			auth.NewAdminAuthorizer(tokens, app.profileRepo),
			limiter,
			cfg.MissingAdminSecrets(),
		),
	}

	e := setupHTTPServer(ctrls)
	probe := checkoutgrpc.NewHealthProbe(app.db, cfg.App.ServiceName, 0)
	grpcSrv, lis := setupGRPCServer(cfg, probe)

	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	go probe.Run(probeCtx)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	stopProbe()
	probe.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

func setupHTTPServer(ctrls controllers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(ensureRequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", ctrls.checkout.Health)

	api := e.Group("/api")
	api.GET("/checkout/config", ctrls.checkout.CheckoutConfig)
	api.POST("/orders", ctrls.checkout.CreateOrder)
	api.POST("/payment/verify", ctrls.checkout.VerifyPayment)
	api.GET("/payment/status", ctrls.checkout.GetOrderStatus)
	api.POST("/webhooks/razorpay", ctrls.webhook.HandleRazorpayWebhook)
	api.POST("/admin/expire-orders", ctrls.admin.ExpireOrders)

	return e
}

func ensureRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
				ctx.Request().Header.Set(echo.HeaderXRequestID, requestID)
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

func setupGRPCServer(cfg *config.Config, probe *checkoutgrpc.HealthProbe) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			checkoutgrpc.RecoveryInterceptor(),
			checkoutgrpc.RequestIDInterceptor(),
			checkoutgrpc.LoggingInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(grpcSrv, probe.Server())

	return grpcSrv, lis
}
