package domain

import "time"

// User represents a registered user of the exchange.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	IsBlocked    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
