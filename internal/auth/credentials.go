package auth

import (
	"github.com/jason-s-yu/friendgraph/internal/models"
)

// Credentials bundles password verification and token issuance for the resolvers.
type Credentials struct {
	*Hasher
	*TokenIssuer
}

// NewCredentials pairs a Hasher with a TokenIssuer.
func NewCredentials(h *Hasher, t *TokenIssuer) *Credentials {
	return &Credentials{Hasher: h, TokenIssuer: t}
}

// VerifyPassword reports whether plaintext matches the user's stored hash.
// Malformed or missing hashes never match.
func (c *Credentials) VerifyPassword(u *models.User, plaintext string) bool {
	if u == nil || u.Password == "" {
		return false
	}
	ok, err := c.ComparePassword(plaintext, u.Password)
	return err == nil && ok
}

// IdentityOf extracts the token claims for u.
func IdentityOf(u *models.User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}
