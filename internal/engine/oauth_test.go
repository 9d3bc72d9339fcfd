package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/domain"
)

func TestOAuthLogin_CreatesVerifiedUser(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := eng.OAuthLogin(ctx, "google-sub-1", "carol@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	u, err := store.FindUserByIdentifier(ctx, domain.ByEmail("carol@x.com"))
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.Verified, "federated identity is trusted")
	assert.Equal(t, "google-sub-1", u.ExternalID)
	assert.Equal(t, "carol@x.com", u.Username, "username defaults to the email")
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, 1, store.RefreshCountByUser(u.ID))
}

func TestOAuthLogin_LinksExistingLocalAccount(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := eng.Register(ctx, "alice", "alice@x.com", "P4ssw0rd!")
	require.NoError(t, err)
	require.False(t, res.User.Verified)

	_, err = eng.OAuthLogin(ctx, "google-sub-2", "alice@x.com")
	require.NoError(t, err)

	u, err := store.FindUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "google-sub-2", u.ExternalID)
	assert.True(t, u.Verified, "linking upgrades verification")
	assert.NotEmpty(t, u.PasswordHash, "local credential survives linking")

	// local password login still works after linking
	_, err = eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)
}

func TestOAuthLogin_SingleSessionInvariant(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	u := registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	first, err := eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)

	second, err := eng.OAuthLogin(ctx, "google-sub-3", "alice@x.com")
	require.NoError(t, err)

	assert.Equal(t, 1, store.RefreshCountByUser(u.ID))

	_, err = eng.Refresh(ctx, first.Refresh)
	require.Error(t, err)
	_, err = eng.Refresh(ctx, second.Refresh)
	require.NoError(t, err)
}

func TestOAuthLogin_RepeatFindsExisting(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.OAuthLogin(ctx, "google-sub-4", "dave@x.com")
	require.NoError(t, err)
	_, err = eng.OAuthLogin(ctx, "google-sub-4", "dave@x.com")
	require.NoError(t, err)

	u, err := store.FindUserByIdentifier(ctx, domain.ByEmail("dave@x.com"))
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 1, store.RefreshCountByUser(u.ID))
}
