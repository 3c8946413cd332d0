package custody

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	HEADER_SIGNATURE       = "X-Custody-Signature"
	HEADER_TIMESTAMP       = "X-Custody-Timestamp"
	HEADER_IDEMPOTENCY_KEY = "Idempotency-Key"

	signaturePrefix = "sha256="
)

// Sign returns the signature header value of a request body.
// The signed payload is {timestamp}.{idempotency_key}.{body}.
func Sign(secret string, timestamp int64, idempotencyKey string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(h, "%d.%s.", timestamp, idempotencyKey)
	h.Write(body)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// Verify checks a signature header value in constant time
func Verify(secret string, timestamp int64, idempotencyKey string, body []byte, signature string) bool {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	expected := Sign(secret, timestamp, idempotencyKey, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
