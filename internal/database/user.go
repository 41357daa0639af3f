package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

const (
	insertUserSQL = `INSERT INTO users (id, username, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`

	selectUserColumns       = `SELECT id, username, email, password, created_at FROM users`
	selectUsersSQL          = selectUserColumns + ` ORDER BY created_at, id`
	selectUserByIDSQL       = selectUserColumns + ` WHERE id = $1`
	selectUserByUsernameSQL = selectUserColumns + ` WHERE username = $1`
	selectUserByEmailSQL    = selectUserColumns + ` WHERE email = $1`
)

// Create validates and inserts a new user. The password is hashed before it is stored.
func (s *PostgresStore) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	in, err := normalizeNewUser(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	u := &models.User{
		ID:        id,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		CreatedAt: s.nowFunc(),
		Friends:   []*models.User{},
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, insertUserSQL, u.ID, u.Username, u.Email, u.Password, u.CreatedAt)
		return execErr
	})
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			return nil, fmt.Errorf("%w (%s)", ErrDuplicateUser, constraint)
		}
		return nil, fmt.Errorf("failed to insert user %q: %w", u.Username, err)
	}
	return u, nil
}

// FindAll returns every user with friends expanded, oldest first.
func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	byID := make(map[uuid.UUID]*models.User)
	for rows.Next() {
		u := &models.User{Friends: []*models.User{}}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	if err := s.attachAllFriends(ctx, byID); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID returns (nil, nil) if no user has id.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return findOne(ctx, s.db, selectUserByIDSQL, id)
}

// FindByUsername returns (nil, nil) if no user has username. The input is normalized
// like it was on Create.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne(ctx, s.db, selectUserByUsernameSQL, normalizeKey(username))
}

// FindByEmail returns (nil, nil) if no user has email. The input is normalized like it
// was on Create.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne(ctx, s.db, selectUserByEmailSQL, normalizeKey(email))
}

func findOne(ctx context.Context, q queryer, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := q.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	friends, err := selectFriends(ctx, q, u.ID)
	if err != nil {
		return nil, err
	}
	u.Friends = friends
	return u, nil
}
