package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/config"
	kafkax "github.com/ariefcatur/go-subscription-payments/internal/kafka"
	"github.com/ariefcatur/go-subscription-payments/internal/logger"
	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	"github.com/ariefcatur/go-subscription-payments/internal/postgres"
	"github.com/ariefcatur/go-subscription-payments/internal/receipts"
	"github.com/ariefcatur/go-subscription-payments/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	// worker ini tidak memanggil Razorpay, key gateway boleh kosong
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingGatewayKeys) {
		log.Fatalf("config: %v", err)
	}
	name := cfg.ServiceName + "-receipts"
	lg, err := logger.New(cfg.LogLevel, name)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, name)
	if err != nil {
		lg.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &receipts.Service{
		Repo:  &payments.ReceiptRepo{DB: db},
		Dedup: &redisx.Dedup{RDB: rdb, Service: "receipts"},
		Cache: &redisx.StatusCache{RDB: rdb},
		Log:   lg,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ReceiptsGroup, payments.TopicPaymentConfirmed, cfg.ReceiptsWorkers, lg.Named("kafka"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		lg.Info("receipts consumer started",
			zap.String("group", cfg.ReceiptsGroup),
			zap.String("topic", payments.TopicPaymentConfirmed),
			zap.Int("workers", cfg.ReceiptsWorkers),
		)
		if err := cons.Start(ctx, svc.HandlePaymentConfirmed); err != nil {
			lg.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	lg.Info("shutting down consumer...")
	cancel()
	// tunggu worker selesai sebelum db/redis ditutup
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		lg.Warn("consumer did not stop in time")
	}
}
