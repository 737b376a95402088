package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/walletsvc/wallet_service/internal/apperr"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Service manages identity lifecycle.
type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new identity service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user and stores a bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	phone := strings.TrimSpace(creds.Phone)
	if phone == "" {
		return User{}, apperr.Invalid("Phone number is required.")
	}

	_, err := s.repo.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		return User{}, apperr.Conflicting("User with the same phone number already exists.")
	case !errors.Is(err, ErrNotFound):
		return User{}, apperr.Wrap(apperr.Internal, "lookup user", err)
	}

	if len(creds.Password) < MinPasswordLength {
		return User{}, apperr.Invalid("Password length should be at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, apperr.Invalid("Password length should be at most 72 bytes.")
		}
		return User{}, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user := User{
		ID:           uuid.New().String(),
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return User{}, apperr.Conflicting("User with the same phone number already exists.")
		}
		return User{}, apperr.Wrap(apperr.Internal, "create user", err)
	}

	return user, nil
}

// Authenticate verifies a phone/password pair. bcrypt compares in constant time.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByPhone(ctx, strings.TrimSpace(creds.Phone))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.Missing("User not found.")
		}
		return User{}, apperr.Wrap(apperr.Internal, "lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return User{}, apperr.Invalid("Invalid password.")
		}
		return User{}, apperr.Wrap(apperr.Internal, "compare password", err)
	}

	return user, nil
}
