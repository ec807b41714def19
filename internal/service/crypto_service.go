package service

import (
	"context"
	"fmt"
	"strings"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
)

// CryptoService coordinates catalog operations backed by the crypto repository.
type CryptoService interface {
	List(ctx context.Context) ([]domain.Crypto, error)
	Create(ctx context.Context, name, symbol string, priceUSD, priceStars, totalSupply float64) (*domain.Crypto, error)
	UpdatePrice(ctx context.Context, id int64, priceUSD, priceStars float64) error
}

type cryptoService struct {
	cryptos repository.CryptoRepository
}

func NewCryptoService(cryptos repository.CryptoRepository) CryptoService {
	return &cryptoService{cryptos: cryptos}
}

func (s *cryptoService) List(ctx context.Context) ([]domain.Crypto, error) {
	return s.cryptos.List(ctx)
}

func (s *cryptoService) Create(ctx context.Context, name, symbol string, priceUSD, priceStars, totalSupply float64) (*domain.Crypto, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	crypto := &domain.Crypto{
		Name:        name,
		Symbol:      strings.ToUpper(symbol),
		PriceUSD:    priceUSD,
		PriceStars:  priceStars,
		TotalSupply: totalSupply,
	}
	if _, err := s.cryptos.Create(ctx, crypto); err != nil {
		return nil, err
	}
	return crypto, nil
}

func (s *cryptoService) UpdatePrice(ctx context.Context, id int64, priceUSD, priceStars float64) error {
	return s.cryptos.UpdatePrice(ctx, id, priceUSD, priceStars)
}
