package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request
// body, prefixed with the scheme.
const SignatureHeader = "X-Signature"

const signaturePrefix = "sha256="

// Sign computes the signature header value for the body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// verifySignature checks the header against the expected signature of the
// raw body using a constant-time comparison.
func verifySignature(secret, body []byte, header string) bool {
	if header == "" {
		return false
	}

	return hmac.Equal([]byte(Sign(secret, body)), []byte(header))
}
