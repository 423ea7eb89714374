package receipts

import (
	"context"
	"encoding/json"

	kafkax "github.com/ariefcatur/go-subscription-payments/internal/kafka"
	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Store interface {
	Insert(ctx context.Context, rc payments.Receipt) (inserted bool, err error)
}

type Dedup interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// Service turns PaymentConfirmed events into payment_receipts rows.
type Service struct {
	Repo  Store
	Dedup Dedup
	Cache payments.StatusCache
	Log   *zap.Logger
}

// HandlePaymentConfirmed dipasang sebagai handler consumer.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env payments.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses, commit saja
		s.Log.Error("drop malformed envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != payments.EventPaymentConfirmed {
		return nil
	} // ignore

	// 2) dedup via Redis (pakai event_id)
	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	if err := s.record(ctx, env); err != nil {
		// lepas klaim dedup supaya redelivery bisa retry
		_ = s.Dedup.Forget(ctx, env.EventID)
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, env payments.Envelope) error {
	p, err := kafkax.UnwrapPayload[payments.PaymentConfirmedPayload](env.Payload)
	if err != nil {
		return err
	}

	inserted, err := s.Repo.Insert(ctx, payments.Receipt{
		OrderID:        p.OrderID,
		OrderPaymentID: p.OrderPaymentID,
		PaymentID:      p.PaymentID,
		AmountMinor:    p.AmountMinor,
		Currency:       p.Currency,
		Source:         p.Source,
	})
	if err != nil {
		return err
	}
	_ = s.Cache.SetPaid(ctx, p.OrderPaymentID, true)

	s.Log.Info("receipt recorded",
		zap.String("event_id", env.EventID),
		zap.String("order_payment_id", p.OrderPaymentID),
		zap.String("payment_id", p.PaymentID),
		zap.Bool("inserted", inserted),
	)
	return nil
}
