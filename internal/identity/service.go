package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/z-cash/z_cash/internal/ledger"
)

const minPasswordLen = 6

// ErrInvalidCredentials indicates the email/password pair did not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the user lifecycle. Registration also provisions the user's
// ledger account seeded with the configured starting balance.
type Service struct {
	repo            Repository
	accounts        ledger.AccountStore
	startingBalance int64
}

// NewService creates a new identity service.
func NewService(repo Repository, accounts ledger.AccountStore, startingBalance int64) *Service {
	return &Service{repo: repo, accounts: accounts, startingBalance: startingBalance}
}

// RegisterInput captures data required to create a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user with a hashed password and its wallet account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return User{}, errors.New("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return User{}, errors.New("invalid email address")
	}
	if len(input.Password) < minPasswordLen {
		return User{}, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.accounts.Create(ctx, ledger.Account{
		ID:        user.ID,
		Balance:   s.startingBalance,
		CreatedAt: now,
	}); err != nil {
		return User{}, fmt.Errorf("provision wallet account: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateInput captures profile changes. Empty fields are left untouched; a
// password change requires the current password.
type UpdateInput struct {
	Name            string
	CurrentPassword string
	NewPassword     string
}

// Update applies profile changes for the given user.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != user.Name {
		if err := s.repo.UpdateName(ctx, id, name); err != nil {
			return User{}, err
		}
		user.Name = name
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(input.CurrentPassword)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		if len(input.NewPassword) < minPasswordLen {
			return User{}, fmt.Errorf("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
			return User{}, err
		}
		user.PasswordHash = hash
	}

	return user, nil
}

// Profile returns the user without any mutation.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
