// Package jwt implements session token issuing and verification with signed JWTs.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/identity"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenDuration is the lifetime of a session token.
const DefaultTokenDuration = 7 * 24 * time.Hour

// Config contains token issuer settings.
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Claims are the claims carried by a session token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwtlib.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
// It holds no mutable state and is safe for concurrent use.
type Issuer struct {
	secret        []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewIssuer creates a new token issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultTokenDuration
	}
	if cfg.TokenDuration < 0 {
		return nil, fmt.Errorf("invalid token duration: %s", cfg.TokenDuration)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Issuer{
		secret:        []byte(cfg.SecretKey),
		tokenDuration: cfg.TokenDuration,
		now:           cfg.Now,
	}, nil
}

// Issue creates a signed token for the subject that expires after the configured duration.
func (i *Issuer) Issue(subjectID string, role domain.Role) (string, error) {
	now := i.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.tokenDuration)),
			ID:        uuid.NewString(),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the embedded subject and role.
// Returns identity.ErrTokenExpired once now reaches the expiry and identity.ErrTokenInvalid
// for anything malformed or signed with another key.
func (i *Issuer) Verify(tokenString string) (string, domain.Role, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(tokenString, claims, func(_ *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", 0, identity.ErrTokenExpired
		}
		return "", 0, fmt.Errorf("%w: %w", identity.ErrTokenInvalid, err)
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return "", 0, identity.ErrTokenInvalid
	}

	return claims.Subject, claims.Role, nil
}

// TokenDuration returns the lifetime of issued tokens.
func (i *Issuer) TokenDuration() time.Duration {
	return i.tokenDuration
}
