package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/awebbr/sistema-vendas/internal/config"
	kafkax "github.com/awebbr/sistema-vendas/internal/kafka"
	"github.com/awebbr/sistema-vendas/internal/notifier"
	"github.com/awebbr/sistema-vendas/internal/postgres"
	"github.com/awebbr/sistema-vendas/internal/redisx"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns))
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	store := postgres.NewStore(pool)
	svc := &notifier.Service{
		Products:          store.Products(),
		Redis:             rdb,
		ServiceName:       cfg.ServiceName + "-notifier",
		LowStockThreshold: cfg.LowStockThreshold,
	}

	group := getenv("NOTIFIER_GROUP", "vendas-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	topics := []string{
		sales.TopicItemAdded,
		sales.TopicOrderFinalized,
		sales.TopicOrderCancelled,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topics=%v workers=%d", group, topics, workers)
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
}
