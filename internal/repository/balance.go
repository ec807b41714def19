package repository

import (
	"context"

	"star-exchange/internal/domain"
)

// BalanceRepository is the account store: one row per (user, crypto) pair.
//
// UpsertAdd is the only mutation. It inserts the row with balance=delta
// when absent, otherwise adds delta to the stored balance, in a single
// statement that is atomic with respect to concurrent callers on the
// same key. It returns the post-mutation balance.
type BalanceRepository interface {
	Init(ctx context.Context) error
	UpsertAdd(ctx context.Context, userID, cryptoID int64, delta float64) (float64, error)
	Get(ctx context.Context, userID, cryptoID int64) (*domain.Balance, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Balance, error)
	ListAll(ctx context.Context) ([]domain.BalanceEntry, error)
}
