package resolver

import (
	"context"

	"github.com/jason-s-yu/friendgraph/internal/auth"
	"github.com/jason-s-yu/friendgraph/internal/models"
)

// Users lists every user with friends expanded.
func (r *Resolver) Users(ctx context.Context) ([]*models.User, error) {
	users, err := r.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// User looks up one user by username. A missing user is (nil, nil).
func (r *Resolver) User(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, nil
	}
	u, err := r.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// Me returns the caller's own record. The record may have been deleted since the token
// was issued, in which case the result is (nil, nil).
func (r *Resolver) Me(ctx context.Context) (*models.User, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, authError(msgNotLoggedIn)
	}
	u, err := r.users.FindByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}
