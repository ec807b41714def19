package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
	"star-exchange/internal/repository/sqlite"
)

type adminFixture struct {
	users    repository.UserRepository
	cryptos  repository.CryptoRepository
	balances repository.BalanceRepository
	admin    AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	cryptos := sqlite.NewCryptoRepository(db)
	balances := sqlite.NewBalanceRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, cryptos.Init(ctx))
	require.NoError(t, balances.Init(ctx))

	return &adminFixture{
		users:    users,
		cryptos:  cryptos,
		balances: balances,
		admin:    NewAdminService(users, balances),
	}
}

func (f *adminFixture) addUser(t *testing.T, username string, isAdmin bool) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, PasswordHash: "x", IsAdmin: isAdmin}
	_, err := f.users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (f *adminFixture) addCrypto(t *testing.T, name, symbol string) *domain.Crypto {
	t.Helper()
	crypto := &domain.Crypto{Name: name, Symbol: symbol}
	_, err := f.cryptos.Create(context.Background(), crypto)
	require.NoError(t, err)
	return crypto
}

func TestAdminService_Authorize(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "root", true)
	user := f.addUser(t, "alice", false)

	assert.NoError(t, f.admin.Authorize(ctx, admin.ID))
	assert.ErrorIs(t, f.admin.Authorize(ctx, user.ID), ErrAdminRequired)
	assert.ErrorIs(t, f.admin.Authorize(ctx, 9999), ErrAdminRequired)
}

type failingUserRepo struct {
	repository.UserRepository
}

func (failingUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func TestAdminService_AuthorizeLookupFailureIsNotAdminRequired(t *testing.T) {
	admin := NewAdminService(failingUserRepo{}, nil)

	err := admin.Authorize(context.Background(), 1)
	require.Error(t, err, "lookup failure must fail closed")
	assert.NotErrorIs(t, err, ErrAdminRequired, "lookup failure is a distinct condition")
}

func TestAdminService_PerformBlockUnblockIdempotent(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "root", true)
	target := f.addUser(t, "alice", false)

	require.NoError(t, f.admin.Perform(ctx, admin.ID, ActionBlock, target.ID, ActionParams{}))
	require.NoError(t, f.admin.Perform(ctx, admin.ID, ActionBlock, target.ID, ActionParams{}))

	got, err := f.users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBlocked)

	require.NoError(t, f.admin.Perform(ctx, admin.ID, ActionUnblock, target.ID, ActionParams{}))
	got, err = f.users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBlocked)
}

func TestAdminService_PerformDeniedLeavesStateUntouched(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	nonAdmin := f.addUser(t, "mallory", false)
	target := f.addUser(t, "alice", false)
	crypto := f.addCrypto(t, "Starcoin", "STAR")

	err := f.admin.Perform(ctx, nonAdmin.ID, ActionAddBalance, target.ID, ActionParams{CryptoID: crypto.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = f.balances.Get(ctx, target.ID, crypto.ID)
	assert.ErrorIs(t, err, repository.ErrBalanceNotFound, "denied mutation must not touch the account store")
}

func TestAdminService_PerformUnsupportedAction(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "root", true)
	target := f.addUser(t, "alice", false)

	err := f.admin.Perform(ctx, admin.ID, Action("teleport"), target.ID, ActionParams{})
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestAdminService_PerformAddBalanceRequiresCrypto(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "root", true)
	target := f.addUser(t, "alice", false)

	err := f.admin.Perform(ctx, admin.ID, ActionAddBalance, target.ID, ActionParams{Amount: 10})
	assert.ErrorIs(t, err, ErrMissingActionParams)
}

func TestAdminService_PerformBlockUnknownTarget(t *testing.T) {
	f := newAdminFixture(t)

	admin := f.addUser(t, "root", true)

	err := f.admin.Perform(context.Background(), admin.ID, ActionBlock, 9999, ActionParams{})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestAdminService_AddBalanceAccumulates(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	target := f.addUser(t, "alice", false)
	crypto := f.addCrypto(t, "Starcoin", "STAR")

	balance, err := f.admin.AddBalance(ctx, target.ID, crypto.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, balance)

	balance, err = f.admin.AddBalance(ctx, target.ID, crypto.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 15.0, balance)
}

func TestAdminService_ListUsersStripsHashes(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "root", true)
	f.addUser(t, "alice", false)

	users, err := f.admin.ListUsers(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)

	_, err = f.admin.ListUsers(ctx, 9999)
	assert.ErrorIs(t, err, ErrAdminRequired)
}

// Full scenario: credit a user, block them, then watch the blocked
// non-admin fail to credit themselves while the balance stays put.
func TestAdminService_EndToEndScenario(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "a1", true)
	user := f.addUser(t, "u1", false)
	crypto := f.addCrypto(t, "Starcoin", "C1")

	require.NoError(t, f.admin.Perform(ctx, admin.ID, ActionAddBalance, user.ID, ActionParams{CryptoID: crypto.ID, Amount: 50}))

	got, err := f.balances.Get(ctx, user.ID, crypto.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Balance)

	require.NoError(t, f.admin.Perform(ctx, admin.ID, ActionBlock, user.ID, ActionParams{}))
	blocked, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	err = f.admin.Perform(ctx, user.ID, ActionAddBalance, user.ID, ActionParams{CryptoID: crypto.ID, Amount: 50})
	assert.ErrorIs(t, err, ErrAdminRequired)

	got, err = f.balances.Get(ctx, user.ID, crypto.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Balance)
}
