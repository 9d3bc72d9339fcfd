package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/log"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/security"
)

const registeredMessage = "Registration successful. Please check your email to verify your account."

type RegisterResult struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`

	// Set only when auto-login after registration is enabled.
	AccessToken  string `json:"access,omitempty"`
	RefreshToken string `json:"refresh,omitempty"`
	AutoLogin    bool   `json:"auto_login,omitempty"`
}

// Register creates an unverified user and its verification token in one
// transaction, then mails the token. Mail delivery is fire-and-forget: a
// dead relay never rolls back the account.
func (e *Engine) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	existing, err := e.store.FindUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrUserExists
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	token, err := security.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderLocal,
	}
	err = e.store.RunTx(ctx, func(ctx context.Context) error {
		if err := e.store.CreateUser(ctx, u); err != nil {
			return err
		}
		return e.store.CreateEmailToken(ctx, u.ID, token, time.Now().Add(e.cfg.VerifyTTL))
	})
	if err != nil {
		return nil, err
	}

	e.sendVerification(u.Email, token)
	e.publish(ctx, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID, Username: u.Username, Email: u.Email,
	})

	out := *u
	out.PasswordHash = ""
	return &RegisterResult{User: &out, Message: registeredMessage}, nil
}

// RegisterWithAutoLogin is Register plus, when the policy switch is on, the
// same token issuance as Login. Both paths produce an unverified user.
func (e *Engine) RegisterWithAutoLogin(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	res, err := e.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	if !e.cfg.AutoLoginAfterRegister {
		return res, nil
	}
	pair, err := e.issueTokens(ctx, res.User)
	if err != nil {
		return nil, err
	}
	res.AccessToken = pair.Access
	res.RefreshToken = pair.Refresh
	res.AutoLogin = true
	return res, nil
}

func (e *Engine) sendVerification(email, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.mailer.SendVerification(ctx, email, token); err != nil {
			log.L().Warn("verification mail failed", zap.String("email", email), zap.Error(err))
		}
	}()
}
