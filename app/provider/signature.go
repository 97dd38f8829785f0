package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/vibast-solutions/ms-go-checkout/app/factory"
)

var signatureLogger = factory.NewModuleLogger("razorpay-signature")

// PaymentSignature is the hex HMAC-SHA256 of "orderID|paymentID" keyed with the key secret.
func PaymentSignature(gatewayOrderID, gatewayPaymentID, secret string) string {
	return hmacHex([]byte(gatewayOrderID+"|"+gatewayPaymentID), secret)
}

// WebhookSignature is the hex HMAC-SHA256 of the raw request body.
func WebhookSignature(rawBody []byte, secret string) string {
	return hmacHex(rawBody, secret)
}

func VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return signaturesEqual(PaymentSignature(gatewayOrderID, gatewayPaymentID, secret), signature)
}

// VerifyWebhookSignature checks the signature over the unmodified body bytes. The body
// must not be decoded and re-encoded first.
func VerifyWebhookSignature(rawBody []byte, signature, secret string) bool {
	if secret == "" {
		signatureLogger.Warn("webhook secret is not configured; rejecting webhook")
		return false
	}
	if strings.TrimSpace(signature) == "" {
		return false
	}
	return signaturesEqual(WebhookSignature(rawBody, secret), strings.TrimSpace(signature))
}

func hmacHex(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func signaturesEqual(expected, actual string) bool {
	return hmac.Equal([]byte(expected), []byte(actual))
}
