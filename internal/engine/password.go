package engine

import (
	"context"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

// ChangePassword requires a live refresh session as proof before any
// password check runs. On success the new hash is written and every session
// for the user is wiped, atomically — logout-on-password-change.
func (e *Engine) ChangePassword(ctx context.Context, refreshToken string, ident domain.Identifier, oldPassword, newPassword string) (string, error) {
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
	if !security.CheckPassword(u.PasswordHash, oldPassword) {
		return "", apperr.ErrInvalidOldPassword
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		if err := e.store.UpdateUserPassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return e.store.DeleteRefreshByUser(ctx, u.ID)
	})
	if err != nil {
		return "", err
	}

	e.publish(ctx, queue.KeyPasswordChanged, queue.PasswordChanged{UserID: u.ID})
	return "Password changed successfully", nil
}
