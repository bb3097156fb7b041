package jwtx

import (
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the smallest HMAC key accepted, in bytes.
const MinKeySize = 32

// DeriveKey turns the configured secret into HMAC key bytes. A secret that is
// valid padded standard base64 is decoded, anything else is used as its raw
// UTF-8 bytes. Every issuer and verifier must go through this one function or
// their signatures will not agree.
func DeriveKey(secret string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) > 0 {
		return decoded
	}
	return []byte(secret)
}

// methodForKey picks the strongest HMAC variant the key is long enough for.
func methodForKey(key []byte) *jwt.SigningMethodHMAC {
	switch {
	case len(key) >= 64:
		return jwt.SigningMethodHS512
	case len(key) >= 48:
		return jwt.SigningMethodHS384
	default:
		return jwt.SigningMethodHS256
	}
}
