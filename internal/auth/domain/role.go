package domain

import "time"

type Role struct {
	ID          int64
	Name        string
	Permissions string // opaque to the auth service
	Description string
	Status      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
