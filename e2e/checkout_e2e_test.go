//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-checkout/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

func TestCheckoutE2E(t *testing.T) {
	httpBase := envOrDefault("CHECKOUT_HTTP_URL", defaultCheckoutHTTPBase)
	grpcAddr := envOrDefault("CHECKOUT_GRPC_ADDR", defaultCheckoutGRPCAddr)

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}
	if err := waitForGRPC(grpcAddr, 30*time.Second); err != nil {
		t.Fatalf("grpc not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("HTTPRequestIDGeneratedWhenMissing", func(t *testing.T) {
		resp, err := http.Get(httpBase + "/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.Header.Get("X-Request-ID") == "" {
			t.Fatal("expected generated X-Request-ID response header")
		}
	})

	t.Run("HTTPStatusMissingParams", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodGet, "/api/payment/status", nil, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPStatusNotFound", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodGet, "/api/payment/status?orderId=00000000-0000-4000-8000-000000000000", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		if resp.Header.Get("Cache-Control") != "no-store" {
			t.Fatalf("expected no-store, got %q", resp.Header.Get("Cache-Control"))
		}
	})

	t.Run("HTTPVerifyBadBody", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodPost, "/api/payment/verify", []byte(`{"razorpay_order_id":`), nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPVerifyBadSignature", func(t *testing.T) {
		resp, body := client.do(t, http.MethodPost, "/api/payment/verify", []byte(`{"razorpay_order_id":"order_e2e","razorpay_payment_id":"pay_e2e","razorpay_signature":"bogus"}`), nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
		var payload types.VerificationFailedResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal failed: %v body=%s", err, string(body))
		}
		if payload.Verified {
			t.Fatal("expected verified=false")
		}
	})

	t.Run("HTTPWebhookInvalidSignature", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodPost, "/api/webhooks/razorpay", []byte(`{"event":"payment.captured","payload":{}}`), map[string]string{
			types.HeaderRazorpaySignature: "bogus",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPWebhookUnknownOrder", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_e2e","order_id":"order_e2e_missing"}}}}`)
		resp, _ := client.do(t, http.MethodPost, "/api/webhooks/razorpay", body, map[string]string{
			types.HeaderRazorpaySignature: webhookSignature(t, body),
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPCreateOrderUnauthenticated", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodPost, "/api/orders", []byte(`{"items":[{"productId":"p","variantId":"v","quantity":1}]}`), nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPExpireOrdersAnonymous", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodPost, "/api/admin/expire-orders", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPExpireOrdersNonAdmin", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodPost, "/api/admin/expire-orders", nil, map[string]string{
			"Authorization": bearerFor(t, envOrDefault("CHECKOUT_E2E_CUSTOMER_ID", "e2e-customer")),
		})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPCheckoutConfigIsPublic", func(t *testing.T) {
		resp, body := client.do(t, http.MethodGet, "/api/checkout/config", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if strings.Contains(strings.ToLower(string(body)), "secret") {
			t.Fatalf("config response must not carry secrets: %s", string(body))
		}
	})

	t.Run("GRPCHealthServing", func(t *testing.T) {
		conn, err := grpc.Dial(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			t.Fatalf("grpc dial failed: %v", err)
		}
		defer conn.Close()

		var header metadata.MD
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
		if err != nil {
			t.Fatalf("grpc health check failed: %v", err)
		}
		if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("expected SERVING, got %s", res.GetStatus())
		}
		if len(header.Get("x-request-id")) == 0 {
			t.Fatal("expected x-request-id response header")
		}
	})
}
