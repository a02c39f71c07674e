// Package auth checks login credentials and issues/verifies the HS256 access
// tokens that gate the conversion endpoint. Tokens are never stored; a token
// is valid while its signature and expiry hold.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"url2pdf/internal/config"
	"url2pdf/internal/domain"
)

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer holds the immutable auth settings read at startup.
type Issuer struct {
	secret   []byte
	username string
	password string
	role     string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer builds an Issuer from the auth section of the config.
func NewIssuer(cfg config.AuthConfig) *Issuer {
	role := cfg.Role
	if role == "" {
		role = config.DefaultRole
	}
	return &Issuer{
		secret:   []byte(cfg.Secret),
		username: cfg.Username,
		password: cfg.Password,
		role:     role,
		ttl:      cfg.TokenTTL,
		now:      time.Now,
	}
}

// TTL reports the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Login returns a signed token when both credentials match. Both fields are
// always compared so a mismatch does not reveal which one was wrong.
func (i *Issuer) Login(usuario, senha string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(usuario), []byte(i.username))
	passOK := subtle.ConstantTimeCompare([]byte(senha), []byte(i.password))
	if userOK&passOK != 1 {
		return "", domain.ErrInvalidCredentials
	}
	return i.Issue(usuario)
}

// Issue signs a token for subject with the fixed role claim.
func (i *Issuer) Issue(subject string) (string, error) {
	now := i.now()
	claims := Claims{
		Role: i.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure wraps
// domain.ErrUnauthorized.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, describe(err))
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return claims, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "invalid signature"
	default:
		return "invalid token"
	}
}
