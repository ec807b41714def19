package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
)

const createBalancesTable = `
CREATE TABLE IF NOT EXISTS balances (
	user_id INTEGER NOT NULL REFERENCES users(id),
	crypto_id INTEGER NOT NULL REFERENCES cryptocurrencies(id),
	balance REAL NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, crypto_id)
);
`

type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) repository.BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBalancesTable); err != nil {
		return fmt.Errorf("create balances table: %w", err)
	}
	return nil
}

// UpsertAdd inserts the (user, crypto) row with balance=delta, or adds
// delta to the existing balance. The whole read-modify-write happens in
// one statement so concurrent callers on the same key cannot lose updates.
func (r *BalanceRepository) UpsertAdd(ctx context.Context, userID, cryptoID int64, delta float64) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO balances (user_id, crypto_id, balance, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, crypto_id)
DO UPDATE SET balance = balance + excluded.balance, updated_at = excluded.updated_at
RETURNING balance`,
		userID,
		cryptoID,
		delta,
		time.Now().UTC(),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("upsert balance: %w", err)
	}
	return balance, nil
}

func (r *BalanceRepository) Get(ctx context.Context, userID, cryptoID int64) (*domain.Balance, error) {
	var b domain.Balance
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, crypto_id, balance, updated_at
FROM balances
WHERE user_id = ? AND crypto_id = ?`,
		userID,
		cryptoID,
	).Scan(&b.UserID, &b.CryptoID, &b.Balance, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

func (r *BalanceRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Balance, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, crypto_id, balance, updated_at
FROM balances
WHERE user_id = ?
ORDER BY crypto_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.UserID, &b.CryptoID, &b.Balance, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}

func (r *BalanceRepository) ListAll(ctx context.Context) ([]domain.BalanceEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT b.user_id, u.username, b.crypto_id, c.symbol, b.balance
FROM balances b
JOIN users u ON u.id = b.user_id
JOIN cryptocurrencies c ON c.id = b.crypto_id
ORDER BY u.username, c.symbol`)
	if err != nil {
		return nil, fmt.Errorf("list all balances: %w", err)
	}
	defer rows.Close()

	var entries []domain.BalanceEntry
	for rows.Next() {
		var e domain.BalanceEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.CryptoID, &e.Symbol, &e.Balance); err != nil {
			return nil, fmt.Errorf("scan balance entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance entries: %w", err)
	}
	return entries, nil
}
