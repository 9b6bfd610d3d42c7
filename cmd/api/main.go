package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/awebbr/sistema-vendas/internal/auth"
	"github.com/awebbr/sistema-vendas/internal/cache"
	"github.com/awebbr/sistema-vendas/internal/config"
	"github.com/awebbr/sistema-vendas/internal/httpx"
	kafkax "github.com/awebbr/sistema-vendas/internal/kafka"
	"github.com/awebbr/sistema-vendas/internal/postgres"
	"github.com/awebbr/sistema-vendas/internal/redisx"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns))
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (one producer, topic per message)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Stores & services
	store := postgres.NewStore(pool)
	products := cache.NewCachedProductStore(store.Products(), rdb)
	ledger := sales.NewLedger(store)
	authSvc := auth.NewService(store.Customers(), auth.NewRedisSessionStore(rdb), cfg.SessionTTL, cfg.BcryptCost)

	validate := validator.New()
	guard := httpx.RequireSession(authSvc)

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Auth: authSvc}).Register(router)
	(&httpx.CustomersHandler{Store: store.Customers(), Auth: authSvc, Validate: validate}).Register(router, guard)
	(&httpx.ProductsHandler{Store: products, Validate: validate}).Register(router, guard)
	(&httpx.OrdersHandler{
		Ledger:   ledger,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router, guard)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
