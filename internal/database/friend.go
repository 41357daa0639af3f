// internal/database/friend.go

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

const (
	// insertFriendSQL is a set-union: a repeated pair hits the primary key and is skipped.
	// Rows are only written for an existing owner so a missing caller adds nothing.
	insertFriendSQL = `
		INSERT INTO user_friends (user_id, friend_id)
		SELECT $1::uuid, $2::uuid
		WHERE EXISTS (SELECT 1 FROM users WHERE id = $1::uuid)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`

	selectFriendsSQL = `
		SELECT u.id, u.username, u.email, u.created_at
		FROM user_friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY f.created_at, u.id
	`

	selectAllFriendsSQL = `
		SELECT f.user_id, u.id, u.username, u.email, u.created_at
		FROM user_friends f
		JOIN users u ON u.id = f.friend_id
		ORDER BY f.created_at, u.id
	`
)

// AddToFriendSet adds friendID to userID's friends and returns the updated user, or
// (nil, false, nil) if userID does not exist. added reports whether a row was written.
// The insert and re-read share one transaction.
//
// friendID is not checked: ids that match no user are stored but never expanded.
func (s *PostgresStore) AddToFriendSet(ctx context.Context, userID, friendID uuid.UUID) (*models.User, bool, error) {
	var (
		updated *models.User
		added   bool
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertFriendSQL, userID, friendID)
		if err != nil {
			return fmt.Errorf("failed to insert friend: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to insert friend: %w", err)
		}
		u, err := findOne(ctx, tx, selectUserByIDSQL, userID)
		if err != nil {
			return err
		}
		updated, added = u, n > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, added, nil
}

// selectFriends expands one user's friend set. Expanded friends never carry a password
// or their own friends.
func selectFriends(ctx context.Context, q queryer, userID uuid.UUID) ([]*models.User, error) {
	rows, err := q.QueryContext(ctx, selectFriendsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select friends: %w", err)
	}
	defer rows.Close()

	friends := []*models.User{}
	for rows.Next() {
		f := &models.User{}
		if err := rows.Scan(&f.ID, &f.Username, &f.Email, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select friends: %w", err)
	}
	return friends, nil
}

// attachAllFriends expands friends for a whole listing with a single query.
func (s *PostgresStore) attachAllFriends(ctx context.Context, byID map[uuid.UUID]*models.User) error {
	rows, err := s.db.QueryContext(ctx, selectAllFriendsSQL)
	if err != nil {
		return fmt.Errorf("select friends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner uuid.UUID
		f := &models.User{}
		if err := rows.Scan(&owner, &f.ID, &f.Username, &f.Email, &f.CreatedAt); err != nil {
			return fmt.Errorf("scan friend: %w", err)
		}
		if u, ok := byID[owner]; ok {
			u.Friends = append(u.Friends, f)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("select friends: %w", err)
	}
	return nil
}
