package session

import (
	"os"
	"time"
)

type Config struct {
	// Secret signs session tokens. Injected here so nothing reads it
	// ambiently at verification time.
	Secret string
	// TTL is the fixed token lifetime.
	TTL time.Duration
}

// ConfigFromEnv reads token config from environment variables.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	ttl := 2 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	return Config{Secret: secret, TTL: ttl}
}
