package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

func TestChangePassword_RotatesCredentialAndSessions(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	u := registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	pair, err := eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)

	msg, err := eng.ChangePassword(ctx, pair.Refresh, domain.ByUsername("alice"), "P4ssw0rd!", "N3wP4ssw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	// every session is wiped: logout-on-password-change
	assert.Equal(t, 0, store.RefreshCountByUser(u.ID))
	_, err = eng.Refresh(ctx, pair.Refresh)
	require.ErrorIs(t, err, apperr.ErrInvalidRefresh)

	// old password no longer authenticates, new one does
	_, err = eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	fresh, err := eng.Login(ctx, domain.ByUsername("alice"), "N3wP4ssw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)
	assert.NotEmpty(t, fresh.Refresh)
}

func TestChangePassword_RequiresLiveSession(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	// session proof fails before the (correct) old password is even checked
	_, err := eng.ChangePassword(ctx, "garbage", domain.ByUsername("alice"), "P4ssw0rd!", "N3wP4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidRefresh)
}

func TestChangePassword_ForeignSession(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")
	registerVerified(t, eng, store, "bob", "bob@x.com", "P4ssw0rd!")

	bobPair, err := eng.Login(ctx, domain.ByUsername("bob"), "P4ssw0rd!")
	require.NoError(t, err)

	// bob's session cannot drive alice's password change
	_, err = eng.ChangePassword(ctx, bobPair.Refresh, domain.ByUsername("alice"), "P4ssw0rd!", "N3wP4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidRefresh)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()
	registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")

	pair, err := eng.Login(ctx, domain.ByUsername("alice"), "P4ssw0rd!")
	require.NoError(t, err)

	_, err = eng.ChangePassword(ctx, pair.Refresh, domain.ByUsername("alice"), "wrong", "N3wP4ssw0rd!")
	require.ErrorIs(t, err, apperr.ErrInvalidOldPassword)
	assert.Equal(t, "Invalid old password", err.Error())
}
