package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/walletsvc/wallet_service/internal/identity"
	"github.com/walletsvc/wallet_service/internal/logging"
)

func newTestService(tokens *TokenManager) *Service {
	ids := identity.NewService(identity.NewMemoryRepository(), identity.WithHashCost(bcrypt.MinCost))
	return NewService(ids, tokens, logging.Discard())
}

func TestRegisterOnceThenConflict(t *testing.T) {
	svc := newTestService(newTestTokens(time.Now()))
	ctx := context.Background()

	res := svc.Register(ctx, "+233111", "secret1")
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	assert.NotEmpty(t, res.Data.ID)
	assert.Equal(t, "+233111", res.Data.PhoneNumber)

	res = svc.Register(ctx, "+233111", "secret1")
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Empty(t, res.Data.ID)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(newTestTokens(time.Now()))

	res := svc.Register(context.Background(), "+233111", "12345")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Password length should be at least 6 characters.", res.Message)
}

func TestLoginIssuesTokenForPhone(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tokens := newTestTokens(now)
	svc := newTestService(tokens)
	ctx := context.Background()

	require.True(t, svc.Register(ctx, "+233111", "secret1").Succeeded())

	res := svc.Login(ctx, "+233111", "secret1")
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	assert.Equal(t, now.Add(time.Hour), res.Data.ExpiresAt)

	sub, err := svc.Verify(res.Data.Value)
	require.NoError(t, err)
	assert.Equal(t, "+233111", sub)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(newTestTokens(time.Now()))
	ctx := context.Background()
	require.True(t, svc.Register(ctx, "+233111", "secret1").Succeeded())

	res := svc.Login(ctx, "+233999", "secret1")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Empty(t, res.Data.Value)

	res = svc.Login(ctx, "+233111", "wrong-password")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid password.", res.Message)
	assert.Empty(t, res.Data.Value)
}

func TestLoginWithoutSigningKeyIsInternal(t *testing.T) {
	svc := newTestService(NewTokenManager("", "wallet-service", "wallet-clients", time.Hour))
	ctx := context.Background()
	require.True(t, svc.Register(ctx, "+233111", "secret1").Succeeded())

	res := svc.Login(ctx, "+233111", "secret1")
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, msgLoginError, res.Message)
}
