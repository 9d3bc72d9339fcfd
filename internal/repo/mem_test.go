package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

func TestMem_CreateUser_DuplicateLosesToIndex(t *testing.T) {
	m := NewMem()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, &domain.User{Username: "alice", Email: "alice@x.com"}))

	// same email, different username: the insert itself must surface the
	// conflict, not an opaque storage error
	err := m.CreateUser(ctx, &domain.User{Username: "alice2", Email: "alice@x.com"})
	require.ErrorIs(t, err, apperr.ErrUserExists)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, kind)

	err = m.CreateUser(ctx, &domain.User{Username: "alice", Email: "other@x.com"})
	require.ErrorIs(t, err, apperr.ErrUserExists)
}
