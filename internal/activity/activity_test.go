package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu     sync.Mutex
	pushed map[string][]string
	err    error
}

func (f *fakeRedis) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.pushed == nil {
		f.pushed = make(map[string][]string)
	}
	for _, v := range values {
		f.pushed[key] = append(f.pushed[key], string(v.([]byte)))
	}
	return redis.NewIntResult(int64(len(f.pushed[key])), nil)
}

func (f *fakeRedis) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.pushed[keys[0]]
	if len(q) == 0 {
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
	f.pushed[keys[0]] = q[1:]
	return redis.NewStringSliceResult([]string{keys[0], q[0]}, nil)
}

type fakeSink struct {
	mu      sync.Mutex
	batches [][]Record
	err     error
}

func (s *fakeSink) InsertActivities(ctx context.Context, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, recs)
	return nil
}

func (s *fakeSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPublishPushesJSON(t *testing.T) {
	rdb := &fakeRedis{}
	p := newRedisPublisher(rdb, "")

	user, friend := uuid.New(), uuid.New()
	at := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, p.Publish(context.Background(), FriendAdded(user, friend, at)))

	require.Len(t, rdb.pushed[DefaultQueueName], 1)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rdb.pushed[DefaultQueueName][0]), &got))
	assert.Equal(t, "friend_added", got["type"])
	assert.Equal(t, user.String(), got["user_id"])
	assert.Equal(t, friend.String(), got["friend_id"])
	assert.EqualValues(t, 1_700_000_000_123, got["timestamp"])
}

func TestPublishOmitsFriendForSignup(t *testing.T) {
	rdb := &fakeRedis{}
	p := newRedisPublisher(rdb, "custom")

	require.NoError(t, p.Publish(context.Background(), UserCreated(uuid.New(), time.Now())))
	require.Len(t, rdb.pushed["custom"], 1)
	assert.NotContains(t, rdb.pushed["custom"][0], "friend_id")
}

func TestPublishError(t *testing.T) {
	p := newRedisPublisher(&fakeRedis{err: errors.New("connection refused")}, "q")
	err := p.Publish(context.Background(), UserCreated(uuid.New(), time.Now()))
	assert.ErrorContains(t, err, "connection refused")
}

func TestDecodeRecord(t *testing.T) {
	user := uuid.New()
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"signup", `{"type":"user_created","user_id":"` + user.String() + `","timestamp":1}`, false},
		{"friend", `{"type":"friend_added","user_id":"` + user.String() + `","friend_id":"` + uuid.NewString() + `","timestamp":1}`, false},
		{"friend without id", `{"type":"friend_added","user_id":"` + user.String() + `","timestamp":1}`, true},
		{"unknown type", `{"type":"poke","user_id":"` + user.String() + `"}`, true},
		{"missing user", `{"type":"user_created"}`, true},
		{"not json", `nope`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := decodeRecord(tc.payload)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user, rec.UserID)
		})
	}
}

func TestConsumerFlushesFullBatch(t *testing.T) {
	rdb := &fakeRedis{}
	sink := &fakeSink{}
	c := newConsumer(rdb, sink, quietLogger(), ConsumerConfig{Queue: "q", BatchSize: 2, FlushDelay: time.Hour})

	p := newRedisPublisher(rdb, "q")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(ctx, UserCreated(uuid.New(), time.Now())))
	}

	for i := 0; i < 3; i++ {
		c.popOnce(ctx)
	}
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 2)

	// the empty queue is a no-op
	c.popOnce(ctx)
	c.flush(ctx)
	assert.Equal(t, 3, sink.total())
}

func TestConsumerDropsBadPayloads(t *testing.T) {
	sink := &fakeSink{}
	c := newConsumer(&fakeRedis{}, sink, quietLogger(), ConsumerConfig{BatchSize: 1})

	c.handlePayload(context.Background(), "garbage")
	assert.Equal(t, 0, sink.total())
}

func TestConsumerRunDrainsOnShutdown(t *testing.T) {
	rdb := &fakeRedis{}
	sink := &fakeSink{}
	c := newConsumer(rdb, sink, quietLogger(), ConsumerConfig{
		Queue:      "q",
		BatchSize:  100,
		FlushDelay: time.Hour,
		PopTimeout: time.Millisecond,
	})

	p := newRedisPublisher(rdb, "q")
	require.NoError(t, p.Publish(context.Background(), UserCreated(uuid.New(), time.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		rdb.mu.Lock()
		defer rdb.mu.Unlock()
		return len(rdb.pushed["q"]) == 0
	}, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 1, sink.total())
}
