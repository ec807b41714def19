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

const createCryptosTable = `
CREATE TABLE IF NOT EXISTS cryptocurrencies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	price_usd REAL NOT NULL DEFAULT 0,
	price_stars REAL NOT NULL DEFAULT 0,
	total_supply REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type CryptoRepository struct {
	db *sql.DB
}

func NewCryptoRepository(db *sql.DB) repository.CryptoRepository {
	return &CryptoRepository{db: db}
}

func (r *CryptoRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCryptosTable); err != nil {
		return fmt.Errorf("create cryptocurrencies table: %w", err)
	}
	return nil
}

func (r *CryptoRepository) Create(ctx context.Context, crypto *domain.Crypto) (int64, error) {
	now := time.Now().UTC()
	crypto.CreatedAt = now
	crypto.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cryptocurrencies (name, symbol, price_usd, price_stars, total_supply, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		crypto.Name,
		crypto.Symbol,
		crypto.PriceUSD,
		crypto.PriceStars,
		crypto.TotalSupply,
		crypto.CreatedAt,
		crypto.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert cryptocurrency: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cryptocurrency last insert id: %w", err)
	}
	crypto.ID = id
	return id, nil
}

func (r *CryptoRepository) GetByID(ctx context.Context, id int64) (*domain.Crypto, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, symbol, price_usd, price_stars, total_supply, created_at, updated_at
FROM cryptocurrencies
WHERE id = ?`,
		id,
	)
	return scanCrypto(row)
}

func (r *CryptoRepository) List(ctx context.Context) ([]domain.Crypto, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, symbol, price_usd, price_stars, total_supply, created_at, updated_at
FROM cryptocurrencies
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cryptocurrencies: %w", err)
	}
	defer rows.Close()

	var cryptos []domain.Crypto
	for rows.Next() {
		crypto, err := scanCrypto(rows)
		if err != nil {
			return nil, err
		}
		cryptos = append(cryptos, *crypto)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cryptocurrencies: %w", err)
	}
	return cryptos, nil
}

func (r *CryptoRepository) UpdatePrice(ctx context.Context, id int64, priceUSD, priceStars float64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE cryptocurrencies SET price_usd = ?, price_stars = ?, updated_at = ? WHERE id = ?`,
		priceUSD,
		priceStars,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("price rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", repository.ErrCryptoNotFound, id)
	}
	return nil
}

func scanCrypto(row interface {
	Scan(dest ...any) error
}) (*domain.Crypto, error) {
	var crypto domain.Crypto
	if err := row.Scan(
		&crypto.ID,
		&crypto.Name,
		&crypto.Symbol,
		&crypto.PriceUSD,
		&crypto.PriceStars,
		&crypto.TotalSupply,
		&crypto.CreatedAt,
		&crypto.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCryptoNotFound
		}
		return nil, fmt.Errorf("scan cryptocurrency: %w", err)
	}
	return &crypto, nil
}
