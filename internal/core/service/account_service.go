package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/daily-journal/blog/internal/core/domain"
	"github.com/daily-journal/blog/internal/core/ports"
)

// SignupGuard serialises concurrent signups for the same email (Redis).
// Acquire reports ok=false when another signup currently holds the email.
type SignupGuard interface {
	Acquire(ctx context.Context, email string) (release func(), ok bool, err error)
}

type noopGuard struct{}

func (noopGuard) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}

// AccountService implements signup and login.
type AccountService struct {
	repo   ports.AccountRepository
	guard  SignupGuard
	cost   int
	logger zerolog.Logger
}

// NewAccountService returns an AccountService. A nil guard disables the
// signup lock; the existence check and the store's unique index still apply.
func NewAccountService(repo ports.AccountRepository, guard SignupGuard, logger zerolog.Logger) *AccountService {
	if guard == nil {
		guard = noopGuard{}
	}
	return &AccountService{repo: repo, guard: guard, cost: bcrypt.DefaultCost, logger: logger}
}

// Signup registers a new account. domain.ErrAccountExists is returned when the
// email is taken or another signup for it is in flight.
func (s *AccountService) Signup(ctx context.Context, email, password string) (*domain.Account, error) {
	release, ok, err := s.guard.Acquire(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("signup lock unavailable, continuing without it")
	} else if !ok {
		s.logger.Info().Str("email", email).Msg("signup already in progress")
		return nil, domain.ErrAccountExists
	}
	if release != nil {
		defer release()
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.logger.Info().Str("email", email).Msg("email is already registered")
		return nil, domain.ErrAccountExists
	case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
		s.logger.Error().Err(err).Str("email", email).Msg("error checking existing user")
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.cost)
	if err != nil {
		s.logger.Error().Err(err).Msg("error hashing password")
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			s.logger.Info().Str("email", email).Msg("email registered concurrently")
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", email).Msg("error creating new user")
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.logger.Info().Str("account_id", created.ID).Msg("new user created")
	return created, nil
}

// Login verifies the credentials. Unknown email and wrong password both yield
// domain.ErrInvalidCredentials so callers cannot tell them apart.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("error finding user")
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), passwordDigest(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return account, nil
}

// passwordDigest feeds bcrypt a fixed 44-byte input so passwords longer than
// bcrypt's 72-byte limit are accepted and every byte of them counts.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
