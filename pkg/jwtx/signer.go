package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Codec signs and verifies CRM tokens with a single shared secret. It is
// immutable once built and safe for concurrent use.
type Codec struct {
	key    []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption tweaks a Codec at construction.
type CodecOption func(*Codec)

// WithClock replaces the wall clock used for "iat", "exp" and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec derives the signing key from secret once and returns a ready
// Codec.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := DeriveKey(secret)
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrWeakKey, len(key))
	}

	c := &Codec{
		key:    key,
		method: methodForKey(key),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods(hmacMethods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Alg reports the signing algorithm chosen for the key.
func (c *Codec) Alg() string { return c.method.Alg() }

// Issue signs a fresh token for id that expires after ttl.
func (c *Codec) Issue(id Identity, ttl time.Duration) (string, Claims, error) {
	if ttl <= 0 {
		return "", Claims{}, ErrInvalidTTL
	}

	claims := NewClaims(id, ttl, c.now())
	token, err := c.Sign(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Sign takes your claims and turns them into a signed token string. Anyone
// holding the shared secret can do this, which is the trust model of the
// whole system.
func (c *Codec) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(c.method, claims)
	s, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Verify is Parse under the Verifier interface.
func (c *Codec) Verify(token string) (Claims, error) {
	return c.Parse(token)
}

// Parse checks the signature first and the expiry second, then returns the
// claims. Errors are always one of ErrMalformed, ErrInvalidSignature or
// ErrExpired, wrapping the parser error for logs.
func (c *Codec) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	id := claims.Identity()
	if id.Username == "" || id.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing identity claims", ErrMalformed)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
