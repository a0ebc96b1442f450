package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// computeSignature returns the hex HMAC-SHA256 of the timestamp header
// concatenated with the raw request body. The timestamp is part of the signed
// material so a captured payload cannot be replayed under a fresh timestamp.
func computeSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret, timestamp string, body []byte, provided string) bool {
	expected := computeSignature(secret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
