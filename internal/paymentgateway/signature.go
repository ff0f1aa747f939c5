package paymentgateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignCompletion returns the hex HMAC-SHA256 of "orderID|paymentID" keyed by secret.
func SignCompletion(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(secret string, c Completion) bool {
	if secret == "" || c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return false
	}
	expected := SignCompletion(secret, c.OrderID, c.PaymentID)
	return hmac.Equal([]byte(expected), []byte(c.Signature))
}
