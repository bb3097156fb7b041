package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the lifetime every CRM service has always assumed
// for a login token.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the CRM token claims. The field names are shared with every
// service verifying the token, so they are part of the wire contract and must
// not be renamed.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric id of the user record the token was issued for.
	UserID int64 `json:"userId"`

	// Username is also carried in "sub".
	Username string `json:"username"`

	// Name is the display name at issuance time.
	Name string `json:"name,omitempty"`

	DepartmentID int64 `json:"departmentId,omitempty"`
	RoleID       int64 `json:"roleId,omitempty"`
}

// Identity is the caller identity a verified token asserts. It is a snapshot
// of the user record taken when the token was issued.
type Identity struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Name         string `json:"name,omitempty"`
	DepartmentID int64  `json:"departmentId,omitempty"`
	RoleID       int64  `json:"roleId,omitempty"`
}

// NewClaims builds the claims for id, issued at now and expiring after ttl.
func NewClaims(id Identity, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:       id.UserID,
		Username:     id.Username,
		Name:         id.Name,
		DepartmentID: id.DepartmentID,
		RoleID:       id.RoleID,
	}
}

// Identity returns the identity the claims assert. Older tokens that only
// carried the username in "sub" are still understood.
func (c Claims) Identity() Identity {
	username := c.Username
	if username == "" {
		username = c.Subject
	}
	return Identity{
		UserID:       c.UserID,
		Username:     username,
		Name:         c.Name,
		DepartmentID: c.DepartmentID,
		RoleID:       c.RoleID,
	}
}

// Expiry returns the "exp" time, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
