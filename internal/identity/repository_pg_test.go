package identity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletsvc/wallet_service/internal/infra"
)

func TestPostgresRepository(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true and DATABASE_URL to run")
	}
	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, os.Getenv("DATABASE_URL"), "wallet-service-test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, infra.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)

	repo := NewPostgresRepository(pool)
	user := User{ID: uuid.NewString(), Phone: "+233111", PasswordHash: []byte("hash"),
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByPhone(ctx, "+233111")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	user.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, user), ErrAlreadyExists)

	_, err = repo.FindByPhone(ctx, "+233999")
	assert.ErrorIs(t, err, ErrNotFound)
}
