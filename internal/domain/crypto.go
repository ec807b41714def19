package domain

import "time"

// Crypto is a tradable cryptocurrency listed in the catalog.
type Crypto struct {
	ID          int64
	Name        string
	Symbol      string
	PriceUSD    float64
	PriceStars  float64
	TotalSupply float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
