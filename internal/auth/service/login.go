package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/directory"
	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/metricsx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

const (
	TokenTypeBearer      = "Bearer"
	DefaultLookupTimeout = 3 * time.Second
)

var (
	// ErrInvalidCredentials covers unknown users, disabled users and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRequest     = errors.New("username and password are required")
	ErrLookupUnavailable  = errors.New("user lookup unavailable")
)

// UserInfo is the public view of a user returned by login and /auth/me.
type UserInfo struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Avatar         string `json:"avatar"`
	DepartmentName string `json:"departmentName"`
	RoleName       string `json:"roleName"`
}

type LoginResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	ExpiresIn int64    `json:"expiresIn"`
	UserInfo  UserInfo `json:"userInfo"`
}

type LoginService struct {
	Store     store.Store
	Directory directory.Directory // optional
	Tokens    *jwtx.Codec

	TTL           time.Duration
	LookupTimeout time.Duration
	Now           func() time.Time
}

// Login checks username and password and issues a token. Callers only ever
// see ErrInvalidRequest, ErrInvalidCredentials, ErrLookupUnavailable or an
// internal error.
func (s *LoginService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(username) == "" || password == "" {
		metricsx.ObserveLogin("invalid_request")
		return LoginResult{}, ErrInvalidRequest
	}

	user, err := s.lookup(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		cryptox.DummyVerify(password)
		l.Info("login rejected", slog.String("reason", "unknown_or_disabled"))
		metricsx.ObserveLogin("invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	case err != nil:
		l.Error("user lookup failed", slog.Any("err", err))
		metricsx.ObserveLogin("lookup_unavailable")
		return LoginResult{}, fmt.Errorf("%w: %w", ErrLookupUnavailable, err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.Int64("user_id", user.ID), slog.Any("err", err))
		} else {
			l.Info("login rejected", slog.String("reason", "password_mismatch"), slog.Int64("user_id", user.ID))
		}
		metricsx.ObserveLogin("invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	ttl := s.ttl()
	token, _, err := s.Tokens.Issue(jwtx.Identity{
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.Name,
		DepartmentID: user.DepartmentID,
		RoleID:       user.RoleID,
	}, ttl)
	if err != nil {
		l.Error("failed to issue token", slog.Int64("user_id", user.ID), slog.Any("err", err))
		metricsx.ObserveLogin("error")
		return LoginResult{}, err
	}

	s.afterLogin(ctx, user, password)
	metricsx.ObserveLogin("success")
	l.Info("login succeeded", slog.Int64("user_id", user.ID))

	info := UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Phone:    user.Phone,
		Avatar:   user.Avatar,
	}
	s.resolveNames(ctx, &info, user.DepartmentID, user.RoleID)

	return LoginResult{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresIn: int64(ttl / time.Second),
		UserInfo:  info,
	}, nil
}

// Me builds the user info for an already verified identity. The claims are
// authoritative; the user record only fills in profile fields the token does
// not carry.
func (s *LoginService) Me(ctx context.Context, id jwtx.Identity) UserInfo {
	info := UserInfo{
		ID:       id.UserID,
		Username: id.Username,
		Name:     id.Name,
	}

	user, err := s.lookupByID(ctx, id.UserID)
	switch {
	case err == nil:
		info.Phone = user.Phone
		info.Avatar = user.Avatar
	case !errors.Is(err, store.ErrNotFound):
		slogx.FromContext(ctx).Warn("profile lookup failed", slog.Int64("user_id", id.UserID), slog.Any("err", err))
	}

	s.resolveNames(ctx, &info, id.DepartmentID, id.RoleID)
	return info
}

// Validate reports whether token is currently acceptable. It never touches
// the store, so the answer for a given token only changes when it expires.
// The error says why a token was refused; it is for logs and metrics only.
func (s *LoginService) Validate(token string) (bool, error) {
	if token == "" {
		return false, jwtx.ErrMalformed
	}
	if _, err := s.Tokens.Verify(token); err != nil {
		return false, err
	}
	return true, nil
}

// Logout has nothing to revoke: tokens are stateless and the client drops
// its copy.
func (s *LoginService) Logout(ctx context.Context, id jwtx.Identity) {
	slogx.FromContext(ctx).Info("logout", slog.Int64("user_id", id.UserID))
}

func (s *LoginService) lookup(ctx context.Context, username string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()
	return s.Store.Users().GetEnabledUserByUsername(ctx, username)
}

func (s *LoginService) lookupByID(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()
	return s.Store.Users().GetUserByID(ctx, id)
}

// CalibrateDummyWork matches the password work done for unknown usernames to
// the strongest bcrypt hash still stored. Run it once the store is seeded.
func (s *LoginService) CalibrateDummyWork(ctx context.Context) error {
	hash, err := s.Store.Users().StrongestLegacyHash(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return cryptox.SetLegacyHash("")
	case err != nil:
		return err
	}
	return cryptox.SetLegacyHash(hash)
}

// afterLogin does the bookkeeping that must never fail a login.
func (s *LoginService) afterLogin(ctx context.Context, user domain.User, password string) {
	l := slogx.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()

	if err := s.Store.Users().RecordLogin(ctx, user.ID, s.now().UTC()); err != nil {
		l.Warn("failed to record login", slog.Int64("user_id", user.ID), slog.Any("err", err))
	}

	if !cryptox.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Warn("failed to rehash password", slog.Int64("user_id", user.ID), slog.Any("err", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		l.Warn("failed to store rehashed password", slog.Int64("user_id", user.ID), slog.Any("err", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.Int64("user_id", user.ID))
}

func (s *LoginService) resolveNames(ctx context.Context, info *UserInfo, deptID, roleID int64) {
	if s.Directory == nil {
		return
	}
	l := slogx.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()

	name, err := s.Directory.DepartmentName(ctx, deptID)
	if err != nil {
		l.Warn("department lookup failed", slog.Int64("department_id", deptID), slog.Any("err", err))
	}
	info.DepartmentName = name

	name, err = s.Directory.RoleName(ctx, roleID)
	if err != nil {
		l.Warn("role lookup failed", slog.Int64("role_id", roleID), slog.Any("err", err))
	}
	info.RoleName = name
}

func (s *LoginService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultTokenTTL
}

func (s *LoginService) lookupTimeout() time.Duration {
	if s.LookupTimeout > 0 {
		return s.LookupTimeout
	}
	return DefaultLookupTimeout
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
