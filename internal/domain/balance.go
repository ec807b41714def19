package domain

import "time"

// Balance is the per-(user, crypto) account row. At most one row exists
// per key; mutations accumulate into it rather than replacing it.
type Balance struct {
	UserID    int64
	CryptoID  int64
	Balance   float64
	UpdatedAt time.Time
}

// BalanceEntry is a balance joined with its owner and asset names,
// used for admin listings and report export.
type BalanceEntry struct {
	UserID   int64
	Username string
	CryptoID int64
	Symbol   string
	Balance  float64
}
