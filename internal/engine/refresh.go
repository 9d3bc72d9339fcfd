package engine

import (
	"context"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/security"
)

// Refresh mints a new access token against a live refresh session. The
// refresh token itself is not rotated here; only login and password change
// rotate. The persisted row count never changes in this operation.
func (e *Engine) Refresh(ctx context.Context, token string) (string, error) {
	rt, err := e.verifySession(ctx, token)
	if err != nil {
		return "", err
	}

	u, err := e.store.FindUserByID(ctx, rt.UserID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.ErrInvalidRefresh
	}
	if !u.Verified {
		return "", apperr.ErrEmailNotVerified
	}

	return security.MakeToken(e.cfg.AccessSecret, u.ID.Hex(), e.cfg.AccessTTL)
}

// Logout deletes the session row for the presented token. Deleting zero rows
// is not an error.
func (e *Engine) Logout(ctx context.Context, token string) error {
	return e.store.DeleteRefreshByToken(ctx, token)
}

// VerifyAccess validates an access token by signature and expiry alone — no
// store lookup. This is what downstream services call.
func (e *Engine) VerifyAccess(token string) (string, error) {
	c, err := security.ParseToken(e.cfg.AccessSecret, token)
	if err != nil {
		return "", apperr.Authentication("Invalid access token")
	}
	return c.UID, nil
}
