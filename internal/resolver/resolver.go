// Package resolver implements the social-graph operations independent of any transport.
//
// Every operation takes the request context, which carries the caller's auth.Viewer,
// and returns either a result or an error for the transport to report. Users leaving
// this package never carry a password hash.
package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/activity"
	"github.com/jason-s-yu/friendgraph/internal/auth"
	"github.com/jason-s-yu/friendgraph/internal/models"
)

// UserRepository is the storage the resolvers need. Lookups return (nil, nil) when
// nothing matches.
type UserRepository interface {
	FindAll(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	// AddToFriendSet must be a single atomic set-union on the stored record. added is
	// false when friendID was already present. A missing userID is (nil, false, nil).
	AddToFriendSet(ctx context.Context, userID, friendID uuid.UUID) (u *models.User, added bool, err error)
}

// Credentials checks passwords and signs tokens.
type Credentials interface {
	VerifyPassword(u *models.User, plaintext string) bool
	IssueToken(id auth.Identity) (string, error)
}

// ActivityPublisher receives best-effort notifications of graph changes.
type ActivityPublisher interface {
	Publish(ctx context.Context, rec activity.Record) error
}

// Resolver holds the dependencies shared by every operation. It is safe for concurrent use.
type Resolver struct {
	users    UserRepository
	creds    Credentials
	activity ActivityPublisher
	log      *logrus.Logger
	nowFunc  func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithActivity publishes signup and friend events to p.
func WithActivity(p ActivityPublisher) Option {
	return func(r *Resolver) { r.activity = p }
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// New builds a Resolver over users and creds. Without WithActivity nothing is published;
// without WithLogger the logrus standard logger is used.
func New(users UserRepository, creds Credentials, opts ...Option) *Resolver {
	r := &Resolver{
		users:   users,
		creds:   creds,
		log:     logrus.StandardLogger(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// publish never fails the calling operation.
func (r *Resolver) publish(ctx context.Context, rec activity.Record) {
	if r.activity == nil {
		return
	}
	if err := r.activity.Publish(ctx, rec); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"type":    rec.Type,
			"user_id": rec.UserID,
		}).Warn("failed to publish activity")
	}
}

func publicUsers(users []*models.User) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			out = append(out, u.Public())
		}
	}
	return out
}
