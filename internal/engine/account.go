package engine

import (
	"context"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

// RemoveUser deletes the account after the same session proof as
// ChangePassword plus a live password check. The cascade guarantees no
// orphan token rows survive the user.
func (e *Engine) RemoveUser(ctx context.Context, refreshToken string, ident domain.Identifier, password string) (string, error) {
	rt, err := e.verifySession(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	u, err := e.store.FindUserByIdentifier(ctx, ident)
	if err != nil {
		return "", err
	}
	if u == nil || u.ID != rt.UserID {
		return "", apperr.ErrInvalidRefresh
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return "", apperr.ErrInvalidCredentials
	}

	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		return e.store.DeleteUserCascade(ctx, u.ID)
	})
	if err != nil {
		return "", err
	}

	e.publish(ctx, queue.KeyUserDeleted, queue.UserDeleted{UserID: u.ID, Email: u.Email})
	return "Account deleted successfully", nil
}
