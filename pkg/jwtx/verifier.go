package jwtx

import "errors"

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Issuer signs claims into a compact token.
type Issuer interface {
	Sign(Claims) (string, error)
}

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")

	ErrEmptySecret = errors.New("jwtx: empty signing secret")
	ErrWeakKey     = errors.New("jwtx: signing key shorter than 256 bits")
	ErrInvalidTTL  = errors.New("jwtx: token ttl must be positive")
)

// Kind names the failure class of a verification error. It is meant for logs
// and metrics only and must never be sent back to an untrusted caller.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
