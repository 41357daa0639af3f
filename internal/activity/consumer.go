package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists a batch of records.
type Sink interface {
	InsertActivities(ctx context.Context, recs []Record) error
}

type popper interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// ConsumerConfig tunes batching. Zero values fall back to the defaults.
type ConsumerConfig struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration
}

// Consumer drains the activity queue and writes records to a Sink in batches.
// A batch is flushed when it reaches BatchSize or every FlushDelay, whichever comes first.
type Consumer struct {
	rdb  popper
	sink Sink
	log  *logrus.Logger
	cfg  ConsumerConfig

	batchMu sync.Mutex
	batch   []Record
}

// NewConsumer reads cfg.Queue on rdb and writes batches to sink.
func NewConsumer(rdb *redis.Client, sink Sink, logger *logrus.Logger, cfg ConsumerConfig) *Consumer {
	return newConsumer(rdb, sink, logger, cfg)
}

func newConsumer(rdb popper, sink Sink, logger *logrus.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueueName
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = 500 * time.Millisecond
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 3 * time.Second
	}
	return &Consumer{
		rdb:   rdb,
		sink:  sink,
		log:   logger,
		cfg:   cfg,
		batch: make([]Record, 0, cfg.BatchSize),
	}
}

// Run blocks until ctx is cancelled. Whatever is still batched is flushed on the way out.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.FlushDelay)
	defer ticker.Stop()

	c.log.WithField("queue", c.cfg.Queue).Info("activity consumer started")
	defer func() {
		c.flush(context.WithoutCancel(ctx))
		c.log.Info("activity consumer stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.flush(ctx)
		default:
			c.popOnce(ctx)
		}
	}
}

// popOnce waits up to PopTimeout for one record.
func (c *Consumer) popOnce(ctx context.Context) {
	res, err := c.rdb.BLPop(ctx, c.cfg.PopTimeout, c.cfg.Queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			c.log.WithError(err).Error("BLPop failed")
		}
		return
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return
	}
	c.handlePayload(ctx, res[1])
}

func (c *Consumer) handlePayload(ctx context.Context, payload string) {
	rec, err := decodeRecord(payload)
	if err != nil {
		c.log.WithError(err).Warn("dropping activity record")
		return
	}

	c.batchMu.Lock()
	c.batch = append(c.batch, rec)
	full := len(c.batch) >= c.cfg.BatchSize
	c.batchMu.Unlock()

	if full {
		c.flush(ctx)
	}
}

// flush writes the pending batch. On failure the records are logged and dropped.
func (c *Consumer) flush(ctx context.Context) {
	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return
	}
	pending := make([]Record, len(c.batch))
	copy(pending, c.batch)
	c.batch = c.batch[:0]
	c.batchMu.Unlock()

	if err := c.sink.InsertActivities(ctx, pending); err != nil {
		c.log.WithError(err).WithField("count", len(pending)).Error("failed to flush activity batch")
		return
	}
	c.log.WithField("count", len(pending)).Debug("flushed activity batch")
}
