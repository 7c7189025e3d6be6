package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/dscommerce/internal/config"
	"github.com/example/dscommerce/internal/infrastructure/kafka"
	"github.com/example/dscommerce/internal/infrastructure/store"
	"github.com/example/dscommerce/internal/invalidation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stdout)
	slog.SetDefault(log)

	if len(cfg.KafkaBrokers) == 0 || cfg.RedisAddr == "" {
		log.Error("KAFKA_BROKERS and REDIS_ADDR are required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := store.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()

	handler := invalidation.NewHandler(store.NewProductCache(rdb, cfg.CacheTTL, log), log)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, log)
	defer consumer.Close()

	log.Info("invalidator started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroup)
	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shutting down")
}
