package engine

import (
	"context"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

// Login authenticates a password against a username-or-email identifier and
// rotates the session. Absent user and wrong password fail identically so
// the error is useless for account enumeration; the verified check runs only
// after the password has matched, for the same reason.
func (e *Engine) Login(ctx context.Context, ident domain.Identifier, password string) (TokenPair, error) {
	u, err := e.store.FindUserByIdentifier(ctx, ident)
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil || u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, password) {
		return TokenPair{}, apperr.ErrInvalidCredentials
	}
	if !u.Verified {
		return TokenPair{}, apperr.ErrLoginUnverified
	}

	pair, err := e.issueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, err
	}

	e.publish(ctx, queue.KeyUserLoggedIn, queue.UserLoggedIn{
		UserID: u.ID, Email: u.Email, Provider: u.Provider,
	})
	return pair, nil
}
