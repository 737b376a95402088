package auth

import (
	"context"
	"log/slog"

	"github.com/walletsvc/wallet_service/internal/apperr"
	"github.com/walletsvc/wallet_service/internal/identity"
	"github.com/walletsvc/wallet_service/internal/metrics"
	"github.com/walletsvc/wallet_service/internal/respond"
)

const (
	msgRegistered    = "User registered successfully."
	msgRegisterError = "An error occurred while registering user."
	msgLoggedIn      = "User logged in successfully."
	msgLoginError    = "An error occurred while logging in user."
)

// Service is the entry point for registration and login. It turns identity
// outcomes into status-coded results and issues session tokens.
type Service struct {
	ids    *identity.Service
	tokens *TokenManager
	logger *slog.Logger
}

func NewService(ids *identity.Service, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{ids: ids, tokens: tokens, logger: logger}
}

// Register creates a credential for phone.
func (s *Service) Register(ctx context.Context, phone, password string) respond.Result[identity.Summary] {
	user, err := s.ids.Register(ctx, identity.Credentials{Phone: phone, Password: password})
	if err != nil {
		s.logFailure("auth.register", phone, err)
		return record("auth.register", respond.Fail[identity.Summary](err, msgRegisterError))
	}
	s.logger.Info("auth.register completed", slog.String("user_id", user.ID), slog.String("phone", user.Phone))
	return record("auth.register", respond.OK(user.Summary(), msgRegistered))
}

// Login verifies credentials and issues a session token whose subject is the phone number.
func (s *Service) Login(ctx context.Context, phone, password string) respond.Result[Token] {
	user, err := s.ids.Authenticate(ctx, identity.Credentials{Phone: phone, Password: password})
	if err != nil {
		s.logFailure("auth.login", phone, err)
		return record("auth.login", respond.Fail[Token](err, msgLoginError))
	}

	tok, err := s.tokens.Issue(user.Phone)
	if err != nil {
		s.logFailure("auth.login", phone, apperr.Wrap(apperr.Internal, "issue token", err))
		return record("auth.login", respond.Fail[Token](err, msgLoginError))
	}
	s.logger.Info("auth.login completed", slog.String("phone", user.Phone))
	return record("auth.login", respond.OK(tok, msgLoggedIn))
}

// Verify resolves a bearer token to the caller's phone number.
func (s *Service) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *Service) logFailure(op, phone string, err error) {
	if apperr.KindOf(err) == apperr.Internal {
		s.logger.Error(op+" failed", slog.String("phone", phone), slog.Any("error", err))
		return
	}
	s.logger.Warn(op+" rejected", slog.String("phone", phone), slog.String("reason", apperr.MessageOf(err, "")))
}

func record[T any](op string, r respond.Result[T]) respond.Result[T] {
	metrics.RecordOperation(op, r.Code)
	return r
}
