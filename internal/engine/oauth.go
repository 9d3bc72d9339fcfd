package engine

import (
	"context"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/queue"
)

// OAuthLogin is the find-or-create-or-link path for a federated identity.
// A new account is created verified (the provider vouches for the email).
// An existing local account matched by email gets the provider id backfilled
// and is upgraded to verified without re-proving the local password — a
// known trust escalation, kept as-is pending product review.
func (e *Engine) OAuthLogin(ctx context.Context, providerID, email string) (TokenPair, error) {
	u, err := e.store.FindUserByExternalIDOrEmail(ctx, providerID, email)
	if err != nil {
		return TokenPair{}, err
	}

	switch {
	case u == nil:
		u = &domain.User{
			Username:   email,
			Email:      email,
			Provider:   domain.ProviderGoogle,
			ExternalID: providerID,
			Verified:   true,
		}
		if err := e.store.CreateUser(ctx, u); err != nil {
			return TokenPair{}, err
		}
	case u.ExternalID == "":
		if err := e.store.LinkExternalID(ctx, u.ID, domain.ProviderGoogle, providerID); err != nil {
			return TokenPair{}, err
		}
		u.ExternalID = providerID
		u.Verified = true
	}

	pair, err := e.issueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, err
	}

	e.publish(ctx, queue.KeyUserLoggedIn, queue.UserLoggedIn{
		UserID: u.ID, Email: u.Email, Provider: domain.ProviderGoogle,
	})
	return pair, nil
}
