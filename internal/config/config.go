// Package config loads the process configuration once, in main, and hands
// it to constructors as a plain struct.
//
// WHY A STRUCT AND NOT GLOBALS?
// Reading env vars wherever they're needed scatters hidden inputs across
// the codebase and makes components untestable in isolation. Loading
// everything here means every dependency on configuration is visible in a
// constructor signature.
//
// A .env file in the working directory is loaded first (godotenv), then
// real environment variables override it. Missing .env is not an error —
// production deployments set the environment directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPort        = 8080
	defaultDBPath      = "data/twitter.db"
	defaultCookieName  = "session_id"
	defaultSessionTTL  = 7 * 24 * time.Hour
	defaultBcryptCost  = 12
	minSecretKeyLength = 16
)

// Config holds everything the server needs at startup.
type Config struct {
	Port              int
	DBPath            string
	SecretKey         string        // HMAC key for session tokens
	SessionCookieName string        // cookie carrying the session token
	SessionTTL        time.Duration // how long a minted session stays valid
	BcryptCost        int
}

// Load reads .env (if present) and the environment, applies defaults, and
// validates the result. SECRET_KEY is the only variable with no default —
// the server refuses to start without one long enough to sign tokens with.
func Load() (Config, error) {
	// Ignore the error: a missing .env file just means "env vars only".
	_ = godotenv.Load()

	cfg := Config{
		Port:              defaultPort,
		DBPath:            defaultDBPath,
		SessionCookieName: defaultCookieName,
		SessionTTL:        defaultSessionTTL,
		BcryptCost:        defaultBcryptCost,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if len(cfg.SecretKey) < minSecretKeyLength {
		return Config{}, fmt.Errorf("config: SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}

	if v := os.Getenv("SESSION_COOKIE_NAME"); v != "" {
		cfg.SessionCookieName = v
	}

	if v := os.Getenv("SESSION_EXPIRE_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("config: invalid SESSION_EXPIRE_SECONDS %q", v)
		}
		cfg.SessionTTL = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("config: invalid BCRYPT_COST %q", v)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}
