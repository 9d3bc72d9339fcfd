package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tazhibayda/identity-service/internal/duration"
)

type Config struct {
	Port    string `env:"APP_PORT" envDefault:"8080"`
	Prod    bool   `env:"APP_PROD" envDefault:"false"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"auth_db"`

	AccessSecret  string `env:"ACCESS_TOKEN_SECRET" envDefault:"default_access_secret"`
	RefreshSecret string `env:"REFRESH_TOKEN_SECRET" envDefault:"default_refresh_secret"`

	// TTLs accept "15m", "24h", "14d" style values (see internal/duration).
	AccessTTLRaw  string        `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTLRaw string        `env:"REFRESH_TOKEN_TTL" envDefault:"14d"`
	VerifyTTLRaw  string        `env:"VERIFY_TOKEN_TTL" envDefault:"24h"`
	AccessTTL     time.Duration `env:"-"`
	RefreshTTL    time.Duration `env:"-"`
	VerifyTTL     time.Duration `env:"-"`

	AutoLoginAfterRegister bool `env:"AUTO_LOGIN_AFTER_REGISTER" envDefault:"false"`

	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MIN" envDefault:"5"`
	RateLimitBypass bool   `env:"RATE_LIMIT_BYPASS" envDefault:"false"`

	RabbitURL string `env:"RABBIT_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@localhost"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	OAuthStateSecret   string `env:"OAUTH_STATE_SECRET" envDefault:"default_state_secret"`

	TraceEnabled bool `env:"TRACE_ENABLED" envDefault:"false"`
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, err
	}
	var err error
	if c.AccessTTL, err = duration.Parse(c.AccessTTLRaw); err != nil {
		return c, fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
	}
	if c.RefreshTTL, err = duration.Parse(c.RefreshTTLRaw); err != nil {
		return c, fmt.Errorf("REFRESH_TOKEN_TTL: %w", err)
	}
	if c.VerifyTTL, err = duration.Parse(c.VerifyTTLRaw); err != nil {
		return c, fmt.Errorf("VERIFY_TOKEN_TTL: %w", err)
	}
	return c, nil
}
