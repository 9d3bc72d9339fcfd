package repo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

// Mem is an in-memory credential store for tests and local development. It
// mirrors Store's method set. RunTx only serialises against other RunTx
// calls; that is enough for a single test process, not for production.
type Mem struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*domain.User
	refresh     map[string]*domain.RefreshToken // keyed by token hash
	emailTokens map[string]*domain.EmailVerificationToken
}

func NewMem() *Mem {
	return &Mem{
		users:       make(map[primitive.ObjectID]*domain.User),
		refresh:     make(map[string]*domain.RefreshToken),
		emailTokens: make(map[string]*domain.EmailVerificationToken),
	}
}

func (m *Mem) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (m *Mem) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// mirror the partial unique indexes on username/email/external_id
	for _, e := range m.users {
		if (u.Username != "" && e.Username == u.Username) ||
			(u.Email != "" && e.Email == u.Email) ||
			(u.ExternalID != "" && e.ExternalID == u.ExternalID) {
			return apperr.ErrUserExists
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = cloneUser(u)
	return nil
}

func (m *Mem) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUser(m.users[id]), nil
}

func (m *Mem) FindUserByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		switch ident.Kind {
		case domain.IdentByUsername:
			if u.Username != "" && u.Username == ident.Value {
				return cloneUser(u), nil
			}
		case domain.IdentByEmail:
			if u.Email != "" && u.Email == ident.Value {
				return cloneUser(u), nil
			}
		}
	}
	return nil, nil
}

func (m *Mem) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (m *Mem) FindUserByExternalIDOrEmail(ctx context.Context, externalID, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (externalID != "" && u.ExternalID == externalID) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (m *Mem) SetUserVerified(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Verified = true
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *Mem) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.PasswordHash = hash
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *Mem) LinkExternalID(ctx context.Context, id primitive.ObjectID, provider, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.ExternalID = externalID
		u.Provider = provider
		u.Verified = true
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *Mem) DeleteUserCascade(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	for k, rt := range m.refresh {
		if rt.UserID == id {
			delete(m.refresh, k)
		}
	}
	for k, et := range m.emailTokens {
		if et.UserID == id {
			delete(m.emailTokens, k)
		}
	}
	return nil
}

func (m *Mem) SaveRefresh(ctx context.Context, userID primitive.ObjectID, plain string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[hashToken(plain)] = &domain.RefreshToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TokenHash: hashToken(plain),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *Mem) FindRefresh(ctx context.Context, plain string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.refresh[hashToken(plain)]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (m *Mem) DeleteRefreshByToken(ctx context.Context, plain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refresh, hashToken(plain))
	return nil
}

func (m *Mem) DeleteRefreshByUser(ctx context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rt := range m.refresh {
		if rt.UserID == userID {
			delete(m.refresh, k)
		}
	}
	return nil
}

func (m *Mem) CreateEmailToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emailTokens[token] = &domain.EmailVerificationToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *Mem) FindEmailToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	et, ok := m.emailTokens[token]
	if !ok {
		return nil, nil
	}
	cp := *et
	return &cp, nil
}

func (m *Mem) DeleteEmailToken(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, et := range m.emailTokens {
		if et.ID == id {
			delete(m.emailTokens, k)
		}
	}
	return nil
}

func (m *Mem) DeleteEmailTokensByUser(ctx context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, et := range m.emailTokens {
		if et.UserID == userID {
			delete(m.emailTokens, k)
		}
	}
	return nil
}

// EmailTokensByUser returns the live tokens for a user, for invariant checks
// in tests.
func (m *Mem) EmailTokensByUser(userID primitive.ObjectID) []domain.EmailVerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmailVerificationToken
	for _, et := range m.emailTokens {
		if et.UserID == userID {
			out = append(out, *et)
		}
	}
	return out
}

// RefreshCountByUser and EmailTokenCountByUser exist for invariant checks in
// tests.
func (m *Mem) RefreshCountByUser(userID primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rt := range m.refresh {
		if rt.UserID == userID {
			n++
		}
	}
	return n
}

func (m *Mem) EmailTokenCountByUser(userID primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, et := range m.emailTokens {
		if et.UserID == userID {
			n++
		}
	}
	return n
}
