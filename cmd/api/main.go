package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/config"
	"github.com/ariefcatur/go-subscription-payments/internal/httpx"
	kafkax "github.com/ariefcatur/go-subscription-payments/internal/kafka"
	"github.com/ariefcatur/go-subscription-payments/internal/logger"
	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	"github.com/ariefcatur/go-subscription-payments/internal/postgres"
	"github.com/ariefcatur/go-subscription-payments/internal/razorpayx"
	"github.com/ariefcatur/go-subscription-payments/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		lg.Fatal("db migrate", zap.Error(err))
	}
	if len(applied) > 0 {
		lg.Info("migrations applied", zap.Strings("versions", applied))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, satu writer untuk semua topic payment
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, lg.Named("kafka"))
	prod.Start(ctx)

	svc := &payments.Service{
		Store:       &payments.Repo{DB: db},
		Gateway:     razorpayx.New(cfg.PublicKey, cfg.SecretKey, cfg.WebhookSecret),
		Producer:    prod,
		Cache:       &redisx.StatusCache{RDB: rdb},
		Currency:    cfg.Currency,
		ServiceName: cfg.ServiceName,
		Log:         lg.Named("payments"),
	}
	router := httpx.NewRouter(lg.Named("http"))
	ph := &httpx.PaymentsHandler{
		Service:        svc,
		Log:            lg.Named("http"),
		WebhookEnabled: cfg.WebhookSecret != "",
	}
	ph.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.Bool("webhook", ph.WebhookEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	lg.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
	cancel()
}
