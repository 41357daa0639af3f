package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

func TestVerifyPassword(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenConfig{Secret: "s", TTL: time.Hour})
	require.NoError(t, err)
	creds := NewCredentials(NewHasher(testParams), issuer)

	hash, err := creds.HashPassword("pw")
	require.NoError(t, err)
	u := &models.User{ID: uuid.New(), Password: hash}

	assert.True(t, creds.VerifyPassword(u, "pw"))
	assert.False(t, creds.VerifyPassword(u, "wrong"))
	assert.False(t, creds.VerifyPassword(&models.User{Password: "not-a-hash"}, "pw"))
	assert.False(t, creds.VerifyPassword(&models.User{}, ""))
	assert.False(t, creds.VerifyPassword(nil, "pw"))
}

func TestViewerFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Anonymous{}, ViewerFrom(ctx))
	_, ok := IdentityFrom(ctx)
	assert.False(t, ok)

	id := Identity{ID: uuid.New(), Username: "alice"}
	ctx = WithViewer(ctx, Authenticated{Identity: id})
	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	ctx = WithViewer(ctx, Anonymous{})
	_, ok = IdentityFrom(ctx)
	assert.False(t, ok)
}
