// Package mail sends verification emails over SMTP. Delivery failures are
// the caller's problem to log, never to roll back: user creation must
// survive a dead mail relay.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/log"
)

type Sender struct {
	addr    string
	host    string
	auth    smtp.Auth
	from    string
	baseURL string
}

func New(host string, port int, username, password, from, baseURL string) *Sender {
	return &Sender{
		addr:    fmt.Sprintf("%s:%d", host, port),
		host:    host,
		auth:    smtp.PlainAuth("", username, password, host),
		from:    from,
		baseURL: baseURL,
	}
}

// SendVerification mails the opaque verification token as a link.
func (s *Sender) SendVerification(ctx context.Context, email, token string) error {
	m := mailyak.New(s.addr, s.auth)
	m.To(email)
	m.From(s.from)
	m.Subject("Verify your email")
	m.HTML().Set(fmt.Sprintf(`
		<h1>Email verification</h1>
		<p>Click the link below to verify your email address:</p>
		<p><a href="%s/api/auth/verify?token=%s">Verify email</a></p>
	`, s.baseURL, token))

	done := make(chan error, 1)
	go func() { done <- m.Send() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send verification email: %w", err)
		}
	}
	return nil
}

// LogSender is the dev/no-SMTP fallback: it logs the token instead of
// delivering it.
type LogSender struct{}

func (LogSender) SendVerification(ctx context.Context, email, token string) error {
	log.L().Info("verification email (log only)",
		zap.String("email", email), zap.String("token", token))
	return nil
}
