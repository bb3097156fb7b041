package httpx

import (
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

// ErrMissingAuthorization means the Authorization header is absent or does not
// use the bearer scheme.
var ErrMissingAuthorization = errors.New("httpx: missing bearer authorization")

// BearerToken extracts the token from an Authorization header value. The
// scheme must be exactly "Bearer " and the token non-empty; anything else is
// rejected rather than guessed at.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingAuthorization
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingAuthorization
	}
	return token, nil
}
