package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/engine"
)

func TestVerifyEmail_OneShot(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := eng.Register(ctx, "alice", "alice@x.com", "P4ssw0rd!")
	require.NoError(t, err)
	token := store.EmailTokensByUser(res.User.ID)[0].Token

	msg, err := eng.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	u, _ := store.FindUserByID(ctx, res.User.ID)
	assert.True(t, u.Verified)
	assert.Equal(t, 0, store.EmailTokenCountByUser(res.User.ID), "token must be consumed")

	// second use of the same token must fail: verification is not idempotent
	_, err = eng.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, apperr.ErrInvalidVerifyToken)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	_, err := eng.VerifyEmail(context.Background(), "no-such-token")
	require.ErrorIs(t, err, apperr.ErrInvalidVerifyToken)
	assert.Equal(t, "Invalid verification token", err.Error())
}

func TestVerifyEmail_Expired(t *testing.T) {
	eng, store := newTestEngine(t, func(c *engine.Config) { c.VerifyTTL = -time.Second })
	ctx := context.Background()

	res, err := eng.Register(ctx, "alice", "alice@x.com", "P4ssw0rd!")
	require.NoError(t, err)
	token := store.EmailTokensByUser(res.User.ID)[0].Token

	_, err = eng.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, apperr.ErrVerifyTokenExpired)
	assert.Equal(t, "Verification token has expired", err.Error())

	// expired token is garbage-collected on discovery, not reused
	assert.Equal(t, 0, store.EmailTokenCountByUser(res.User.ID))
	u, _ := store.FindUserByID(ctx, res.User.ID)
	assert.False(t, u.Verified)
}

func TestResendVerificationEmail(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := eng.Register(ctx, "alice", "alice@x.com", "P4ssw0rd!")
	require.NoError(t, err)
	first := store.EmailTokensByUser(res.User.ID)[0].Token

	msg, err := eng.ResendVerificationEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	tokens := store.EmailTokensByUser(res.User.ID)
	require.Len(t, tokens, 1, "resend replaces the prior token")
	assert.NotEqual(t, first, tokens[0].Token)

	// the replaced token is dead
	_, err = eng.VerifyEmail(ctx, first)
	require.ErrorIs(t, err, apperr.ErrInvalidVerifyToken)
}

func TestResendVerificationEmail_Errors(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.ResendVerificationEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, apperr.ErrUserNotFound)
	assert.Equal(t, "User not found", err.Error())

	registerVerified(t, eng, store, "alice", "alice@x.com", "P4ssw0rd!")
	_, err = eng.ResendVerificationEmail(ctx, "alice@x.com")
	require.ErrorIs(t, err, apperr.ErrAlreadyVerified)
	assert.Equal(t, "Email is already verified", err.Error())
}
