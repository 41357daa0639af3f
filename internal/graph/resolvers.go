package graph

import (
	"context"
	"errors"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/database"
	"github.com/jason-s-yu/friendgraph/internal/models"
	"github.com/jason-s-yu/friendgraph/internal/resolver"
)

// Root serves both the Query and Mutation types.
type Root struct {
	r   *resolver.Resolver
	log *logrus.Logger
}

func (q *Root) Users(ctx context.Context) ([]*UserResolver, error) {
	users, err := q.r.Users(ctx)
	if err != nil {
		return nil, q.wireError(ctx, "users", err)
	}
	return wrapUsers(users), nil
}

func (q *Root) User(ctx context.Context, args struct{ Username string }) (*UserResolver, error) {
	u, err := q.r.User(ctx, args.Username)
	if err != nil {
		return nil, q.wireError(ctx, "user", err)
	}
	return wrapUser(u), nil
}

func (q *Root) Me(ctx context.Context) (*UserResolver, error) {
	u, err := q.r.Me(ctx)
	if err != nil {
		return nil, q.wireError(ctx, "me", err)
	}
	return wrapUser(u), nil
}

type addUserArgs struct {
	Username string
	Email    string
	Password string
}

func (q *Root) AddUser(ctx context.Context, args addUserArgs) (*AuthResolver, error) {
	res, err := q.r.AddUser(ctx, models.NewUser{
		Username: args.Username,
		Email:    args.Email,
		Password: args.Password,
	})
	if err != nil {
		return nil, q.wireError(ctx, "addUser", err)
	}
	return &AuthResolver{a: res}, nil
}

type loginArgs struct {
	Email    string
	Password string
}

func (q *Root) Login(ctx context.Context, args loginArgs) (*AuthResolver, error) {
	res, err := q.r.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, q.wireError(ctx, "login", err)
	}
	return &AuthResolver{a: res}, nil
}

func (q *Root) AddFriend(ctx context.Context, args struct{ FriendID graphql.ID }) (*UserResolver, error) {
	u, err := q.r.AddFriend(ctx, string(args.FriendID))
	if err != nil {
		return nil, q.wireError(ctx, "addFriend", err)
	}
	return wrapUser(u), nil
}

// wireError maps resolver errors onto what the client sees. Authentication and input
// errors keep their message; anything else is logged and reported generically.
func (q *Root) wireError(ctx context.Context, op string, err error) error {
	var authErr *resolver.AuthenticationError
	if errors.As(err, &authErr) {
		return authErr
	}
	if errors.Is(err, database.ErrDuplicateUser) || errors.Is(err, database.ErrInvalidUser) ||
		errors.Is(err, resolver.ErrInvalidID) {
		return &InputError{Message: err.Error()}
	}
	q.log.WithError(err).WithField("operation", op).Error("resolver failed")
	return errInternal
}

// InputError reports a request the client can fix.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "BAD_USER_INPUT"}
}

type internalError struct{}

func (internalError) Error() string { return "internal server error" }

func (internalError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "INTERNAL_SERVER_ERROR"}
}

var errInternal = internalError{}

// UserResolver resolves the User type. It has no password field.
type UserResolver struct {
	u *models.User
}

func wrapUser(u *models.User) *UserResolver {
	if u == nil {
		return nil
	}
	return &UserResolver{u: u}
}

func wrapUsers(users []*models.User) []*UserResolver {
	out := make([]*UserResolver, 0, len(users))
	for _, u := range users {
		if u != nil {
			out = append(out, &UserResolver{u: u})
		}
	}
	return out
}

func (u *UserResolver) ID() graphql.ID {
	return graphql.ID(u.u.ID.String())
}

func (u *UserResolver) Username() string {
	return u.u.Username
}

func (u *UserResolver) Email() string {
	return u.u.Email
}

func (u *UserResolver) FriendCount() int32 {
	return int32(len(u.u.Friends))
}

func (u *UserResolver) Friends() []*UserResolver {
	return wrapUsers(u.u.Friends)
}

// AuthResolver resolves the Auth type.
type AuthResolver struct {
	a *models.Auth
}

func (a *AuthResolver) Token() graphql.ID {
	return graphql.ID(a.a.Token)
}

func (a *AuthResolver) User() *UserResolver {
	return &UserResolver{u: a.a.User}
}
