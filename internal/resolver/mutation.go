package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/friendgraph/internal/activity"
	"github.com/jason-s-yu/friendgraph/internal/auth"
	"github.com/jason-s-yu/friendgraph/internal/models"
)

// AddUser signs up a new user and logs them in.
func (r *Resolver) AddUser(ctx context.Context, in models.NewUser) (*models.Auth, error) {
	u, err := r.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	token, err := r.creds.IssueToken(auth.IdentityOf(u))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	r.publish(ctx, activity.UserCreated(u.ID, r.nowFunc()))
	return &models.Auth{Token: token, User: u.Public()}, nil
}

// Login exchanges an email and password for a token.
func (r *Resolver) Login(ctx context.Context, email, password string) (*models.Auth, error) {
	u, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, authError(msgIncorrectCredential)
	}

	if !r.creds.VerifyPassword(u, password) {
		return nil, authError(msgIncorrectCredential)
	}

	token, err := r.creds.IssueToken(auth.IdentityOf(u))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.Auth{Token: token, User: u.Public()}, nil
}

// AddFriend adds friendID to the caller's friend set. Re-adding is a no-op and
// publishes nothing.
//
// The caller is checked before friendID is parsed. Only the caller's set changes;
// friendID is neither checked for existence nor compared against the caller.
func (r *Resolver) AddFriend(ctx context.Context, friendID string) (*models.User, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, authError(msgNeedLogin)
	}

	target, err := uuid.Parse(friendID)
	if err != nil {
		return nil, ErrInvalidID
	}

	u, added, err := r.users.AddToFriendSet(ctx, id.ID, target)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	if added {
		r.publish(ctx, activity.FriendAdded(id.ID, target, r.nowFunc()))
	}
	return u.Public(), nil
}
