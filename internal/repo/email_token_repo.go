package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/identity-service/internal/domain"
)

const emailTokensColl = "email_tokens"

func (s *Store) EnsureEmailTokenIndexes(ctx context.Context) error {
	coll := s.DB.Collection(emailTokensColl)

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return err
	}

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) CreateEmailToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.email_tokens.insert",
		tracer.Tag("user_id", userID),
	)
	defer sp.Finish()

	et := domain.EmailVerificationToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.DB.Collection(emailTokensColl).InsertOne(ctx, et)
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) FindEmailToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	var et domain.EmailVerificationToken
	err := s.DB.Collection(emailTokensColl).
		FindOne(ctx, bson.M{"token": token}).Decode(&et)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &et, nil
}

func (s *Store) DeleteEmailToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.DB.Collection(emailTokensColl).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) DeleteEmailTokensByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.DB.Collection(emailTokensColl).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
