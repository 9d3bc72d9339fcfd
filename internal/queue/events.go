package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Exchange is the topic exchange all auth events go through.
const Exchange = "auth.events"

// Routing keys.
const (
	KeyUserRegistered  = "user.registered"
	KeyUserVerified    = "user.verified"
	KeyUserLoggedIn    = "user.loggedin"
	KeyPasswordChanged = "user.password_changed"
	KeyUserDeleted     = "user.deleted"
)

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

type UserVerified struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
}

type UserLoggedIn struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Provider string             `json:"provider"`
}

type PasswordChanged struct {
	UserID primitive.ObjectID `json:"user_id"`
}

type UserDeleted struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
}
