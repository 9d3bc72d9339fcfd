// Package engine is the credential-and-session lifecycle core: registration,
// email verification, login, token refresh, password change, account removal
// and OAuth linking. The engine is stateless given a store and the signing
// secrets; all cross-step consistency is delegated to the store's RunTx.
package engine

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/log"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

// Store is the narrow interface the engine needs from the credential store.
// repo.Store (Mongo) and repo.Mem both satisfy it.
type Store interface {
	RunTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindUserByExternalIDOrEmail(ctx context.Context, externalID, email string) (*domain.User, error)
	SetUserVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	LinkExternalID(ctx context.Context, id primitive.ObjectID, provider, externalID string) error
	DeleteUserCascade(ctx context.Context, id primitive.ObjectID) error

	SaveRefresh(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error
	FindRefresh(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeleteRefreshByToken(ctx context.Context, token string) error
	DeleteRefreshByUser(ctx context.Context, userID primitive.ObjectID) error

	CreateEmailToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error
	FindEmailToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error)
	DeleteEmailToken(ctx context.Context, id primitive.ObjectID) error
	DeleteEmailTokensByUser(ctx context.Context, userID primitive.ObjectID) error
}

type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
}

// Config is passed in at construction; there is no ambient process state.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	VerifyTTL     time.Duration

	AutoLoginAfterRegister bool
}

type Engine struct {
	store  Store
	mailer Mailer
	events queue.Publisher
	cfg    Config
}

func New(store Store, mailer Mailer, events queue.Publisher, cfg Config) *Engine {
	if events == nil {
		events = queue.NewNoop()
	}
	return &Engine{store: store, mailer: mailer, events: events, cfg: cfg}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// issueTokens mints a fresh access/refresh pair and swaps the persisted
// session in one transaction: delete all prior refresh rows, insert exactly
// one. This is the single-session invariant.
func (e *Engine) issueTokens(ctx context.Context, u *domain.User) (TokenPair, error) {
	uid := u.ID.Hex()
	access, err := security.MakeToken(e.cfg.AccessSecret, uid, e.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := security.MakeToken(e.cfg.RefreshSecret, uid, e.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	expiresAt := time.Now().Add(e.cfg.RefreshTTL)
	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		if err := e.store.DeleteRefreshByUser(ctx, u.ID); err != nil {
			return err
		}
		return e.store.SaveRefresh(ctx, u.ID, refresh, expiresAt)
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// verifySession checks a presented refresh token the only way that counts:
// signature and expiry, plus existence of the persisted row. Signature
// validity alone never proves a live session, because logout and rotation
// must be able to kill a still-unexpired token. Expired rows are deleted on
// discovery.
func (e *Engine) verifySession(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt, err := e.store.FindRefresh(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, apperr.ErrInvalidRefresh
	}
	if rt.ExpiresAt.Before(time.Now()) {
		if err := e.store.DeleteRefreshByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, apperr.ErrRefreshExpired
	}
	if _, err := security.ParseToken(e.cfg.RefreshSecret, token); err != nil {
		if err == security.ErrTokenExpired {
			if derr := e.store.DeleteRefreshByToken(ctx, token); derr != nil {
				return nil, derr
			}
			return nil, apperr.ErrRefreshExpired
		}
		return nil, apperr.ErrInvalidRefresh
	}
	return rt, nil
}

// publish fires a lifecycle event without blocking or failing the operation.
func (e *Engine) publish(ctx context.Context, key string, event any) {
	reqID, _ := ctx.Value(requestIDKey{}).(string)
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := e.events.Publish(pctx, queue.Exchange, key, event, reqID); err != nil {
			log.L().Warn("event publish failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

type requestIDKey struct{}

// WithRequestID stores the inbound request id so published events can carry
// it for correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
