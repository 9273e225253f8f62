// Package auth provides session token signing, password hashing, and the
// authentication middleware.
//
// SESSION MODEL:
// There is no server-side session table. The session cookie carries a JWT
// whose claims are the whole session: the user's public handle in "sub"
// plus an expiry. The HMAC signature is what makes the cookie trustworthy —
// no field of the claims means anything until the signature checks out.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"handle","exp":1234567890,...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Because verification needs only the secret, every request is authenticated
// without a database lookup. The flip side: logout can't revoke a token.
// Clearing the cookie is all logout does; a stolen token stays valid until
// its expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "twitter-clone-api"

// ErrInvalidSession is the only error Verify returns. Malformed token,
// bad signature, and expired token all collapse into it on purpose:
// callers must not be able to tell an attacker which check failed.
var ErrInvalidSession = errors.New("auth: invalid session")

// SessionClaims is the verified payload of a session token.
type SessionClaims struct {
	UserID    string // public handle from the "sub" claim
	ExpiresAt time.Time
}

// SessionService mints and verifies session tokens. It holds the HMAC
// secret and the configured session lifetime (default 7 days); the same
// secret must be used for both operations.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a SessionService. The secret should be at
// least 32 bytes of random data in production; the 16-character floor
// here only catches obviously unusable values (config.Load enforces the
// same bound earlier).
func NewSessionService(secret string, ttl time.Duration) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session TTL must be positive")
	}
	return &SessionService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured session lifetime. Handlers use it for the
// cookie's MaxAge so cookie and token expire together.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Mint creates and signs a session token for the given public handle.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. The jti claim (an xid) makes every minted token distinct even
// for the same user within the same second.
func (s *SessionService) Mint(userID string) (string, error) {
	return s.mintWithExpiry(userID, time.Now().Add(s.ttl))
}

// mintWithExpiry is split out so tests can mint already-expired tokens
// with a correct signature.
func (s *SessionService) mintWithExpiry(userID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		ID:        xid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (exp is required and in the future)
//   - Issuer matches (prevents tokens minted by other apps with our lib)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// Any failure returns ErrInvalidSession with no further detail.
func (s *SessionService) Verify(tokenStr string) (SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidSession
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidSession
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return SessionClaims{}, ErrInvalidSession
	}

	return SessionClaims{
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
