package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

func TestRemoveUser_CascadesTokens(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	u := registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	pair, err := eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)

	msg, err := eng.RemoveUser(ctx, pair.Refresh, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	// no orphan rows survive the user
	assert.Equal(t, 0, store.RefreshCountByUser(u.ID))
	assert.Equal(t, 0, store.EmailTokenCountByUser(u.ID))

	gone, err := store.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRemoveUser_RequiresProof(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	_, err := eng.RemoveUser(ctx, "garbage", domain.ByUsername("alice"), "P4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidRefresh)

	pair, err := eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)

	_, err = eng.RemoveUser(ctx, pair.Refresh, domain.ByUsername("alice"), "wrong-password")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// the failed attempts deleted nothing
	u, err := store.FindUserByIdentifier(ctx, domain.ByUsername("alice"))
	require.NoError(t, err)
	require.NotNil(t, u)
}
