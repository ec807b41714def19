package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewCryptoRepository(db).Init(ctx))
	require.NoError(t, NewBalanceRepository(db).Init(ctx))

	return db
}

func createTestUser(t *testing.T, repo repository.UserRepository, username string, isAdmin bool) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		PasswordHash: "x",
		IsAdmin:      isAdmin,
	}
	_, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func createTestCrypto(t *testing.T, repo repository.CryptoRepository, name, symbol string) *domain.Crypto {
	t.Helper()

	crypto := &domain.Crypto{
		Name:       name,
		Symbol:     symbol,
		PriceUSD:   1,
		PriceStars: 10,
	}
	_, err := repo.Create(context.Background(), crypto)
	require.NoError(t, err)
	return crypto
}
