package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jason-s-yu/friendgraph/internal/activity"
)

const insertActivitySQL = `INSERT INTO activity_log (type, user_id, friend_id, occurred_at) VALUES ($1, $2, $3, $4)`

// InsertActivities writes a batch of activity records in a single transaction.
func (s *PostgresStore) InsertActivities(ctx context.Context, recs []activity.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, rec := range recs {
			var friendID any
			if rec.FriendID != nil {
				friendID = *rec.FriendID
			}
			if _, err := tx.ExecContext(ctx, insertActivitySQL, rec.Type, rec.UserID, friendID, rec.OccurredAt()); err != nil {
				return fmt.Errorf("insert activity %s: %w", rec.Type, err)
			}
		}
		return nil
	})
}
