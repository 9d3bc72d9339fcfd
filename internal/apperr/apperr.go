// Package apperr is the engine's error taxonomy. Every operation fails with
// exactly one kind and a fixed message; callers and tests match on both.
// Infrastructure errors (store, broker) are not wrapped into the taxonomy and
// surface as opaque 5xx-equivalents.
package apperr

import "errors"

type Kind int

const (
	KindConflict Kind = iota + 1
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }

// KindOf reports the taxonomy kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err belongs to the taxonomy with the given kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// Contract errors. The message strings are stable and part of the API.
var (
	ErrUserExists         = Conflict("Username or email already exists")
	ErrInvalidVerifyToken = Validation("Invalid verification token")
	ErrVerifyTokenExpired = Validation("Verification token has expired")
	ErrAlreadyVerified    = Validation("Email is already verified")
	ErrInvalidCredentials = Authentication("Invalid credentials")
	ErrLoginUnverified    = Authorization("Please verify your email before logging in")
	ErrInvalidRefresh     = Authentication("Invalid refresh token")
	ErrRefreshExpired     = Authentication("Refresh token expired")
	ErrEmailNotVerified   = Authorization("Email is not verified")
	ErrInvalidOldPassword = Authentication("Invalid old password")
	ErrUserNotFound       = NotFound("User not found")
)
