// Package activity moves social-graph events from the API to the activity log.
//
// The API pushes JSON records onto a Redis list; cmd/activity drains the list in
// batches and persists them. Publishing is best-effort and never blocks a mutation
// on anything but a single RPUSH.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserCreated = "user_created"
	TypeFriendAdded = "friend_added"
)

// DefaultQueueName is the Redis list activity records are pushed to.
const DefaultQueueName = "friendgraph_activity"

// Record is one activity event.
type Record struct {
	Type      string     `json:"type"`
	UserID    uuid.UUID  `json:"user_id"`
	FriendID  *uuid.UUID `json:"friend_id,omitempty"`
	Timestamp int64      `json:"timestamp"` // epoch millis
}

// UserCreated builds the record for a signup.
func UserCreated(userID uuid.UUID, at time.Time) Record {
	return Record{Type: TypeUserCreated, UserID: userID, Timestamp: at.UnixMilli()}
}

// FriendAdded builds the record for a friend-set addition.
func FriendAdded(userID, friendID uuid.UUID, at time.Time) Record {
	return Record{Type: TypeFriendAdded, UserID: userID, FriendID: &friendID, Timestamp: at.UnixMilli()}
}

// OccurredAt converts the millisecond timestamp back to a time.
func (r Record) OccurredAt() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

func decodeRecord(payload string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Record{}, fmt.Errorf("invalid activity record: %w", err)
	}
	switch rec.Type {
	case TypeUserCreated:
	case TypeFriendAdded:
		if rec.FriendID == nil {
			return Record{}, fmt.Errorf("invalid activity record: %s without friend_id", rec.Type)
		}
	default:
		return Record{}, fmt.Errorf("invalid activity record: unknown type %q", rec.Type)
	}
	if rec.UserID == uuid.Nil {
		return Record{}, fmt.Errorf("invalid activity record: missing user_id")
	}
	return rec, nil
}
