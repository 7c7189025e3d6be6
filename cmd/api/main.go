package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/dscommerce/internal/api"
	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/command"
	"github.com/example/dscommerce/internal/config"
	"github.com/example/dscommerce/internal/events"
	"github.com/example/dscommerce/internal/infrastructure/kafka"
	"github.com/example/dscommerce/internal/infrastructure/store"
	"github.com/example/dscommerce/internal/query"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireJWTSecret()
	}
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		log.Info("publishing catalog events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	cmdHandler := command.NewHandler(st, publisher, log)
	queryHandler := query.NewHandler(st, st)

	router := api.NewRouter(
		api.NewHandlers(cmdHandler, queryHandler, log),
		api.NewAuthHandlers(st, jwtService, cfg.OAuthClientID, cfg.OAuthSecret, log),
		jwtService,
		api.Options{CORSOrigins: cfg.CORSOrigins},
		log,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// openStore builds the configured storage, wrapped in the Redis cache when
// REDIS_ADDR is set. The returned func releases its connections.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, func(), error) {
	var (
		st      store.Store
		closers []func() error
	)

	switch cfg.Store {
	case config.StoreMemory:
		ms, err := store.NewSeededMemoryStore()
		if err != nil {
			return nil, nil, err
		}
		st = ms
		log.Info("using seeded in-memory store")
	default:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)

		ps := store.NewPostgresStore(db)
		if err := ps.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		fx, err := store.NewFixtures()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := ps.Seed(ctx, fx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		st = ps
		log.Info("connected to PostgreSQL")
	}

	if cfg.RedisAddr != "" {
		rdb := store.NewRedisClient(cfg.RedisAddr)
		closers = append(closers, rdb.Close)
		st = store.NewCachedStore(st, store.NewProductCache(rdb, cfg.CacheTTL, log))
		log.Info("caching products in Redis", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	return st, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}, nil
}
