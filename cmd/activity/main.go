// cmd/activity/main.go drains the activity queue in Redis and persists the records to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/activity"
	"github.com/jason-s-yu/friendgraph/internal/config"
	"github.com/jason-s-yu/friendgraph/internal/database"
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadActivityWorker()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()

	// the server may run on memory storage, so the activity table is ensured here too
	store := database.NewPostgresStore(db, nil)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := activity.ConnectRedis(ctx, cfg.Activity.RedisAddr, cfg.Activity.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	consumer := activity.NewConsumer(rdb, store, logger, activity.ConsumerConfig{
		Queue:      cfg.Activity.Queue,
		BatchSize:  cfg.Activity.BatchSize,
		FlushDelay: cfg.Activity.FlushDelay,
	})
	consumer.Run(ctx)
}
