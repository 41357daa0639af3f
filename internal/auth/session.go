// internal/auth/session.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingSecret is returned when the issuer is built without a signing secret.
	ErrMissingSecret = errors.New("jwt signing secret must not be empty")

	// ErrInvalidTTL is returned when the issuer is built with a non-positive ttl.
	ErrInvalidTTL = errors.New("token ttl must be > 0")

	// ErrInvalidToken covers every token that fails signature, expiry or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the set of user fields embedded in a token.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Claims is the JWT payload. Data carries the identity; Subject duplicates the id.
type Claims struct {
	Data Identity `json:"data"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenIssuer signs and verifies HS256 identity tokens. Tokens are stateless and never stored.
type TokenIssuer struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewTokenIssuer validates cfg. A failure here is a configuration error and should abort startup.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		return nil, ErrInvalidTTL
	}
	return &TokenIssuer{
		secret:  []byte(cfg.Secret),
		ttl:     cfg.TTL,
		nowFunc: time.Now,
	}, nil
}

// IssueToken creates a signed JWT for id that expires ttl after issuance.
func (t *TokenIssuer) IssueToken(id Identity) (string, error) {
	now := t.nowFunc()
	claims := Claims{
		Data: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token string and returns the identity it carries.
func (t *TokenIssuer) ParseToken(tokenString string) (Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.nowFunc), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Data.ID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: missing identity", ErrInvalidToken)
	}
	return claims.Data, nil
}

// TTL reports how long issued tokens stay valid.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
