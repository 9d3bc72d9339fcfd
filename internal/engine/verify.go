package engine

import (
	"context"
	"time"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

// VerifyEmail consumes a verification token: mark the user verified and
// delete the token atomically. A second call with the same token fails,
// that is the point of one-shot tokens.
func (e *Engine) VerifyEmail(ctx context.Context, token string) (string, error) {
	et, err := e.store.FindEmailToken(ctx, token)
	if err != nil {
		return "", err
	}
	if et == nil {
		return "", apperr.ErrInvalidVerifyToken
	}
	if et.ExpiresAt.Before(time.Now()) {
		// expired before consumption; clean up on discovery
		if err := e.store.DeleteEmailToken(ctx, et.ID); err != nil {
			return "", err
		}
		return "", apperr.ErrVerifyTokenExpired
	}

	u, err := e.store.FindUserByID(ctx, et.UserID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.ErrInvalidVerifyToken
	}

	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		if err := e.store.SetUserVerified(ctx, et.UserID); err != nil {
			return err
		}
		return e.store.DeleteEmailToken(ctx, et.ID)
	})
	if err != nil {
		return "", err
	}

	e.publish(ctx, queue.KeyUserVerified, queue.UserVerified{UserID: u.ID, Email: u.Email})
	return "Email verified successfully", nil
}

// ResendVerificationEmail replaces any prior token for the user with a fresh
// one, keeping at most one live verification token per account.
func (e *Engine) ResendVerificationEmail(ctx context.Context, email string) (string, error) {
	u, err := e.store.FindUserByIdentifier(ctx, domain.ByEmail(email))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.ErrUserNotFound
	}
	if u.Verified {
		return "", apperr.ErrAlreadyVerified
	}

	token, err := security.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		if err := e.store.DeleteEmailTokensByUser(ctx, u.ID); err != nil {
			return err
		}
		return e.store.CreateEmailToken(ctx, u.ID, token, time.Now().Add(e.cfg.VerifyTTL))
	})
	if err != nil {
		return "", err
	}

	e.sendVerification(u.Email, token)
	return "Verification email sent", nil
}
