package service

import (
	"context"
	"errors"
	"fmt"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
)

var (
	// ErrAdminRequired indicates the actor is not a verified administrator.
	ErrAdminRequired = errors.New("admin access required")
	// ErrUnsupportedAction is returned for an unrecognized admin action tag.
	ErrUnsupportedAction = errors.New("unsupported action")
	// ErrMissingActionParams is returned when an action lacks its required parameters.
	ErrMissingActionParams = errors.New("missing action parameters")
)

// Action is the closed set of privileged operations an admin may perform.
type Action string

const (
	ActionBlock      Action = "block"
	ActionUnblock    Action = "unblock"
	ActionAddBalance Action = "add_balance"
)

// ActionParams carries the extra inputs for actions that need them.
// AddBalance requires CryptoID and Amount; block/unblock ignore both.
type ActionParams struct {
	CryptoID int64
	Amount   float64
}

// AdminService gates and dispatches privileged mutations. Privilege is
// re-read from the users table on every call so revocation takes effect
// on the next request.
type AdminService interface {
	Authorize(ctx context.Context, actorID int64) error
	Perform(ctx context.Context, actorID int64, action Action, targetUserID int64, params ActionParams) error
	AddBalance(ctx context.Context, targetUserID, cryptoID int64, delta float64) (float64, error)
	ListUsers(ctx context.Context, actorID int64) ([]domain.User, error)
	ListBalances(ctx context.Context, actorID int64) ([]domain.BalanceEntry, error)
}

type adminService struct {
	users    repository.UserRepository
	balances repository.BalanceRepository
}

func NewAdminService(users repository.UserRepository, balances repository.BalanceRepository) AdminService {
	return &adminService{
		users:    users,
		balances: balances,
	}
}

// Authorize returns nil only when the actor exists and carries the admin
// flag. An unknown actor maps to ErrAdminRequired; a failed lookup is
// surfaced as its own error so callers can distinguish a broken store
// from a revoked actor, but must still treat it as a denial.
func (s *adminService) Authorize(ctx context.Context, actorID int64) error {
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAdminRequired
		}
		return fmt.Errorf("authorize lookup: %w", err)
	}
	if !user.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}

// Perform authorizes the actor and dispatches exactly one action branch.
// Denial short-circuits before any state change.
func (s *adminService) Perform(ctx context.Context, actorID int64, action Action, targetUserID int64, params ActionParams) error {
	if err := s.Authorize(ctx, actorID); err != nil {
		return err
	}

	switch action {
	case ActionBlock:
		return s.users.SetBlocked(ctx, targetUserID, true)
	case ActionUnblock:
		return s.users.SetBlocked(ctx, targetUserID, false)
	case ActionAddBalance:
		if params.CryptoID == 0 {
			return fmt.Errorf("%w: crypto_id is required for add_balance", ErrMissingActionParams)
		}
		_, err := s.AddBalance(ctx, targetUserID, params.CryptoID, params.Amount)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, string(action))
	}
}

// AddBalance applies a signed delta to the (user, crypto) account,
// creating the row on first use. The delta may be negative; the store
// does not enforce a floor. Authorization is the caller's job.
func (s *adminService) AddBalance(ctx context.Context, targetUserID, cryptoID int64, delta float64) (float64, error) {
	balance, err := s.balances.UpsertAdd(ctx, targetUserID, cryptoID, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust balance for user %d: %w", targetUserID, err)
	}
	return balance, nil
}

func (s *adminService) ListUsers(ctx context.Context, actorID int64) ([]domain.User, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.users.ListNonAdmins(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *adminService) ListBalances(ctx context.Context, actorID int64) ([]domain.BalanceEntry, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	return s.balances.ListAll(ctx)
}
