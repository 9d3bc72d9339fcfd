package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/engine"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
)

type capMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *capMailer) SendVerification(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func defaultConfig() engine.Config {
	return engine.Config{
		AccessSecret:  "access-secret-test",
		RefreshSecret: "refresh-secret-test",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		VerifyTTL:     24 * time.Hour,
	}
}

func newTestEngine(t *testing.T, mutate func(*engine.Config)) (*engine.Engine, *repo.Mem) {
	t.Helper()
	cfg := defaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	store := repo.NewMem()
	return engine.New(store, &capMailer{}, queue.NewNoop(), cfg), store
}

// registerVerified registers a user and walks the verification flow,
// returning the stored user.
func registerVerified(t *testing.T, eng *engine.Engine, store *repo.Mem, username, email, password string) *domain.User {
	t.Helper()
	ctx := context.Background()

	res, err := eng.Register(ctx, username, email, password)
	require.NoError(t, err)

	tokens := store.EmailTokensByUser(res.User.ID)
	require.Len(t, tokens, 1)
	_, err = eng.VerifyEmail(ctx, tokens[0].Token)
	require.NoError(t, err)

	u, err := store.FindUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}
