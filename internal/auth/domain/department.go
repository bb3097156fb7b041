package domain

import "time"

type Department struct {
	ID          int64
	Name        string
	Description string
	Status      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
