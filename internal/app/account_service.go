package app

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

type AccountRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}

type AccountService struct {
	repo  AccountRepository
	clock clock.Clock
}

func NewAccountService(repo AccountRepository, clk clock.Clock) *AccountService {
	return &AccountService{
		repo:  repo,
		clock: clk,
	}
}

type CreateAccountInput struct {
	Username string
	Secret   string
}

func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (domain.User, error) {
	if in.Username == "" {
		return domain.User{}, domain.ErrUsernameRequired
	}
	if in.Secret == "" {
		return domain.User{}, domain.ErrSecretRequired
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Secret:    in.Secret,
		CreatedAt: s.clock.Now(),
	}

	// Uniqueness is enforced by the store; a duplicate surfaces as
	// domain.ErrUsernameTaken.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

type LoginInput struct {
	Username string
	Secret   string
}

// Login verifies credentials. Unknown usernames and wrong secrets both map
// to domain.ErrInvalidCredentials so the caller cannot probe which
// usernames exist.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (domain.User, error) {
	if in.Username == "" || in.Secret == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if subtle.ConstantTimeCompare([]byte(user.Secret), []byte(in.Secret)) != 1 {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
