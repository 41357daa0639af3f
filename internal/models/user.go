package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a member of the social graph.
//
// Password holds the encoded argon2id hash and is only populated on records that are
// used for credential checks. Public strips it before a user leaves the resolver layer.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Friends is expanded one level only; entries never carry their own friends.
	Friends []*User `json:"friends"`
}

// NewUser is the signup payload handed to a repository. Password is plaintext here;
// the repository hashes it before it is stored.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Auth is returned by signup and login.
type Auth struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Public returns a copy of u without the password hash, including on every expanded friend.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Friends:   make([]*User, 0, len(u.Friends)),
	}
	for _, f := range u.Friends {
		if f == nil {
			continue
		}
		out.Friends = append(out.Friends, &User{
			ID:        f.ID,
			Username:  f.Username,
			Email:     f.Email,
			CreatedAt: f.CreatedAt,
		})
	}
	return out
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id uuid.UUID) bool {
	for _, f := range u.Friends {
		if f != nil && f.ID == id {
			return true
		}
	}
	return false
}
