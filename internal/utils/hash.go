package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes an HMAC-SHA256 signature over data with hashKey and
// returns it hex-encoded. The relay server stores credentials only in this
// form.
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// EqualHashes compares two hex digests in constant time.
func EqualHashes(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
