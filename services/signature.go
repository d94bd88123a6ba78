package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// sign returns the lowercase hex HMAC-SHA256 of payload under secret, the
// format the gateway uses for both callback and webhook signatures.
func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// validSignature compares in constant time.
func validSignature(secret string, payload []byte, got string) bool {
	want := sign(secret, payload)
	return hmac.Equal([]byte(want), []byte(got))
}

// PaymentSignature is the signature the gateway attaches to a checkout callback.
func PaymentSignature(secret, gatewayOrderID, paymentID string) string {
	return sign(secret, []byte(gatewayOrderID+"|"+paymentID))
}

// WebhookSignature is the signature the gateway sends in x-razorpay-signature.
func WebhookSignature(secret string, body []byte) string {
	return sign(secret, body)
}
