// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/activity"
	"github.com/jason-s-yu/friendgraph/internal/auth"
	"github.com/jason-s-yu/friendgraph/internal/config"
	"github.com/jason-s-yu/friendgraph/internal/database"
	"github.com/jason-s-yu/friendgraph/internal/graph"
	"github.com/jason-s-yu/friendgraph/internal/httpserver"
	"github.com/jason-s-yu/friendgraph/internal/resolver"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher := auth.NewHasher(auth.DefaultParams)
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.TokenTTL})
	if err != nil {
		logger.Fatalf("token issuer: %v", err)
	}

	var users resolver.UserRepository
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		users = database.NewMemoryStore(hasher)
	default:
		db, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer db.Close()

		store := database.NewPostgresStore(db, hasher)
		if err := store.Migrate(ctx); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		users = store
	}

	opts := []resolver.Option{resolver.WithLogger(logger)}
	if cfg.Activity.Enabled() {
		rdb, err := activity.ConnectRedis(ctx, cfg.Activity.RedisAddr, cfg.Activity.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		opts = append(opts, resolver.WithActivity(activity.NewRedisPublisher(rdb, cfg.Activity.Queue)))
		logger.Infof("publishing activity to %s", cfg.Activity.Queue)
	}

	schema, err := graph.NewSchema(resolver.New(users, auth.NewCredentials(hasher, tokens), opts...), logger)
	if err != nil {
		logger.Fatalf("schema: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpserver.NewRouter(schema, tokens, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Infof("Running on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
