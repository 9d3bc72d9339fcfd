package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/identity-service/internal/domain"
)

const refreshColl = "refresh_tokens"

func (s *Store) EnsureRefreshIndexes(ctx context.Context) error {
	coll := s.DB.Collection(refreshColl)

	// TTL as a backstop; the engine still deletes expired rows on discovery.
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return err
	}

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}

func (s *Store) SaveRefresh(ctx context.Context, userID primitive.ObjectID, plain string, expiresAt time.Time) error {
	rt := domain.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(plain),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.DB.Collection(refreshColl).InsertOne(ctx, rt)
	return err
}

// FindRefresh returns the row even when expired; expiry handling (and eager
// cleanup) is the engine's call to make.
func (s *Store) FindRefresh(ctx context.Context, plain string) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := s.DB.Collection(refreshColl).
		FindOne(ctx, bson.M{"token_hash": hashToken(plain)}).Decode(&rt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *Store) DeleteRefreshByToken(ctx context.Context, plain string) error {
	_, err := s.DB.Collection(refreshColl).
		DeleteMany(ctx, bson.M{"token_hash": hashToken(plain)})
	return err
}

func (s *Store) DeleteRefreshByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.DB.Collection(refreshColl).
		DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
