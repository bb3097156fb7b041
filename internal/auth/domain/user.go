package domain

import "time"

// UserStatus is the account switch. Only enabled accounts can log in.
type UserStatus int

const (
	UserDisabled UserStatus = 0
	UserEnabled  UserStatus = 1
)

type User struct {
	ID           int64
	Username     string // unique, case-sensitive, never changes
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	Name         string
	Phone        string
	Avatar       string
	Description  string
	DepartmentID int64 // 0 when unassigned
	RoleID       int64 // 0 when unassigned
	Status       UserStatus
	LastLoginAt  *time.Time
	LoginCount   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Enabled() bool { return u.Status == UserEnabled }
