package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
)

const usersColl = "users"

func (s *Store) EnsureUserIndexes(ctx context.Context) error {
	coll := s.DB.Collection(usersColl)
	// username, email and external_id are each optional, so uniqueness is
	// enforced only where the field exists.
	for _, field := range []string{"username", "email", "external_id"} {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$type": "string"}}),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert")
	defer sp.Finish()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := s.DB.Collection(usersColl).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent registration won the race to the unique index
		return apperr.ErrUserExists
	}
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	switch ident.Kind {
	case domain.IdentByUsername:
		return s.findUser(ctx, bson.M{"username": ident.Value})
	case domain.IdentByEmail:
		return s.findUser(ctx, bson.M{"email": ident.Value})
	}
	return nil, nil
}

func (s *Store) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, nil
	}
	return s.findUser(ctx, bson.M{"$or": or})
}

func (s *Store) FindUserByExternalIDOrEmail(ctx context.Context, externalID, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"$or": bson.A{
		bson.M{"external_id": externalID},
		bson.M{"email": email},
	}})
}

func (s *Store) SetUserVerified(ctx context.Context, id primitive.ObjectID) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.verify", tracer.Tag("user_id", id))
	defer sp.Finish()

	_, err := s.DB.Collection(usersColl).UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"verified": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.update_password", tracer.Tag("user_id", id))
	defer sp.Finish()

	_, err := s.DB.Collection(usersColl).UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

// LinkExternalID attaches a provider identity to an existing local account
// and marks it verified; federated identity is trusted.
func (s *Store) LinkExternalID(ctx context.Context, id primitive.ObjectID, provider, externalID string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.link_external", tracer.Tag("user_id", id))
	defer sp.Finish()

	_, err := s.DB.Collection(usersColl).UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"external_id": externalID,
		"provider":    provider,
		"verified":    true,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

// DeleteUserCascade removes the user and every child row (refresh tokens,
// email tokens) so no orphan session rows survive deletion. Run it inside
// RunTx.
func (s *Store) DeleteUserCascade(ctx context.Context, id primitive.ObjectID) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.delete_cascade", tracer.Tag("user_id", id))
	defer sp.Finish()

	if err := s.DeleteRefreshByUser(ctx, id); err != nil {
		sp.SetTag("error", err)
		return err
	}
	if err := s.DeleteEmailTokensByUser(ctx, id); err != nil {
		sp.SetTag("error", err)
		return err
	}
	_, err := s.DB.Collection(usersColl).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}
