package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

// UserByID resolves a hex user id (as carried in token claims) to the
// account record, with the password hash stripped.
func (e *Engine) UserByID(ctx context.Context, hexID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, apperr.ErrUserNotFound
	}
	u, err := e.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	out := *u
	out.PasswordHash = ""
	return &out, nil
}
