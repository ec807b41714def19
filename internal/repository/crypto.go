package repository

import (
	"context"

	"star-exchange/internal/domain"
)

// CryptoRepository defines persistence operations for the currency catalog.
type CryptoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, crypto *domain.Crypto) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Crypto, error)
	List(ctx context.Context) ([]domain.Crypto, error)
	UpdatePrice(ctx context.Context, id int64, priceUSD, priceStars float64) error
}
