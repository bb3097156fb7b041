package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so a Tx can
// hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Departments() Departments
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername ignores status; it is for existence checks, not login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetEnabledUserByUsername is the login lookup. Disabled and missing
	// accounts both return ErrNotFound so callers cannot tell them apart.
	GetEnabledUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u and returns its generated id.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) error

	// RecordLogin stamps last_login_time and bumps login_count.
	RecordLogin(ctx context.Context, id int64, at time.Time) error

	// StrongestLegacyHash returns the highest cost bcrypt hash still stored,
	// or ErrNotFound once every account has been rehashed.
	StrongestLegacyHash(ctx context.Context) (string, error)

	IsEmpty(ctx context.Context) (bool, error)
}

type Departments interface {
	GetDepartmentByID(ctx context.Context, id int64) (domain.Department, error)
	GetDepartmentByName(ctx context.Context, name string) (domain.Department, error)
	CreateDepartment(ctx context.Context, d domain.Department) (int64, error)
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	CreateRole(ctx context.Context, r domain.Role) (int64, error)
	IsEmpty(ctx context.Context) (bool, error)
}
