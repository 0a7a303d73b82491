// internal/api/payments/signature.go
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// signaturePayload is the canonical string the provider signs for each
// delivery. Both sides must produce it byte for byte.
func signaturePayload(dataID, requestID string) string {
	return fmt.Sprintf("id=%s&request_id=%s", dataID, requestID)
}

// ComputeSignature returns the hex-encoded HMAC-SHA256 of the canonical
// payload under the given secret.
func ComputeSignature(secret, dataID, requestID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signaturePayload(dataID, requestID)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provider-supplied signature in constant time.
func VerifySignature(secret, dataID, requestID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signaturePayload(dataID, requestID)))
	return hmac.Equal(got, mac.Sum(nil))
}
