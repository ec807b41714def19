package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"star-exchange/internal/repository"
	"star-exchange/internal/repository/sqlite"
)

func newUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(context.Background()))
	return NewUserService(users), users
}

func TestUserService_RegisterHashesPassword(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")

	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "long enough"},
		{name: "empty password", username: "alice", password: ""},
		{name: "short password", username: "alice", password: "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "battery staple")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserService_Authenticate(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, repo.SetBlocked(ctx, registered.ID, true))
	_, err = svc.Authenticate(ctx, "alice", "correct horse")
	assert.ErrorIs(t, err, ErrUserBlocked)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "root password"))

	admin, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// second run leaves the existing account alone
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "different password"))
	again, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, admin.PasswordHash, again.PasswordHash)

	// blank config is a no-op
	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
}
