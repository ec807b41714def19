package repository

import "errors"

var (
	// ErrUserNotFound is returned when a user id or username resolves to no row.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when creating a user with a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrCryptoNotFound is returned when a cryptocurrency id resolves to no row.
	ErrCryptoNotFound = errors.New("cryptocurrency not found")
	// ErrBalanceNotFound is returned when no account row exists for a (user, crypto) pair.
	ErrBalanceNotFound = errors.New("balance not found")
)
