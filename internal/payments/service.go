package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-subscription-payments/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const SuccessMessage = "payment successfully received!"

// Store is the Subscription Catalog + Order Ledger. *Repo implements it.
type Store interface {
	GetSubscription(ctx context.Context, id int64) (Subscription, error)
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	CreateOrder(ctx context.Context, sub Subscription, gatewayOrderID string) (Order, error)
	GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (Order, error)
	MarkOrderPaid(ctx context.Context, id int64) error
}

type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Gateway is the remote payment provider (Razorpay).
type Gateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (map[string]any, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// StatusCache holds the paid flag per order_payment_id. Best effort only, the DB is the truth.
type StatusCache interface {
	SetPaid(ctx context.Context, orderPaymentID string, paid bool) error
	Paid(ctx context.Context, orderPaymentID string) (paid bool, ok bool)
}

type Service struct {
	Store       Store
	Gateway     Gateway
	Producer    Publisher
	Cache       StatusCache
	Currency    string
	ServiceName string
	Log         *zap.Logger
}

type InitiateResult struct {
	Payment map[string]any `json:"payment"`
	Order   OrderView      `json:"order"`
}

// Initiate opens a Razorpay order for the subscription and records it unpaid.
// Setiap panggilan = percobaan pembelian baru, tidak ada dedup per subscription.
func (s *Service) Initiate(ctx context.Context, subscriptionID int64) (InitiateResult, error) {
	sub, err := s.Store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return InitiateResult{}, err
	}

	amount := MinorUnits(sub.Price)
	payment, err := s.Gateway.CreateOrder(ctx, GatewayOrderRequest{
		AmountMinor: amount,
		Currency:    s.Currency,
		Receipt:     uuid.NewString(),
		Notes:       map[string]string{"subscription_id": fmt.Sprint(sub.ID), "subscription": sub.Name},
	})
	if err != nil {
		// no local row yet, nothing to compensate
		return InitiateResult{}, fmt.Errorf("%w: create order: %v", ErrRemoteFailure, err)
	}
	gatewayOrderID, _ := payment["id"].(string)
	if gatewayOrderID == "" {
		return InitiateResult{}, fmt.Errorf("%w: create order: response without id", ErrRemoteFailure)
	}

	order, err := s.Store.CreateOrder(ctx, sub, gatewayOrderID)
	if err != nil {
		return InitiateResult{}, err
	}
	s.setCache(ctx, order.OrderPaymentID, false)

	s.publish(ctx, TopicPaymentInitiated, EventPaymentInitiated, order.OrderPaymentID, PaymentInitiatedPayload{
		OrderID:        order.ID,
		OrderPaymentID: order.OrderPaymentID,
		SubscriptionID: sub.ID,
		AmountMinor:    amount,
		Currency:       s.Currency,
	})
	s.Log.Info("payment initiated",
		zap.Int64("subscription_id", sub.ID),
		zap.String("order_payment_id", order.OrderPaymentID),
		zap.Int64("amount_minor", amount),
	)
	return InitiateResult{Payment: payment, Order: NewOrderView(order)}, nil
}

// Confirm verifies the checkout result forwarded by the client and marks the order paid.
func (s *Service) Confirm(ctx context.Context, rawResponse string) error {
	res, err := ParseCheckoutResult(rawResponse)
	if err != nil {
		return err
	}
	order, err := s.Store.GetOrderByGatewayID(ctx, res.OrderID)
	if err != nil {
		return err
	}

	if !s.Gateway.VerifyPaymentSignature(res.OrderID, res.PaymentID, res.Signature) {
		s.rejected(ctx, order, res.PaymentID, SourceCheckout)
		return ErrInvalidSignature
	}
	return s.markPaid(ctx, order, res.PaymentID, SourceCheckout)
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// HandleWebhook processes a Razorpay server-to-server notification. handled=false
// means the event type is not one we act on.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (handled bool, err error) {
	if signature == "" || !s.Gateway.VerifyWebhookSignature(body, signature) {
		s.Log.Warn("webhook signature rejected")
		return false, ErrInvalidSignature
	}
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	switch ev.Event {
	case "order.paid", "payment.captured":
	default:
		return false, nil
	}

	orderID := ev.Payload.Payment.Entity.OrderID
	if orderID == "" {
		orderID = ev.Payload.Order.Entity.ID
	}
	if orderID == "" {
		return false, fmt.Errorf("%w: %s without order id", ErrInvalidPayload, ev.Event)
	}
	order, err := s.Store.GetOrderByGatewayID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if err := s.markPaid(ctx, order, ev.Payload.Payment.Entity.ID, SourceWebhook); err != nil {
		return false, err
	}
	return true, nil
}

// Status reports the paid flag, read-through the cache.
func (s *Service) Status(ctx context.Context, orderPaymentID string) (OrderStatusView, error) {
	if paid, ok := s.Cache.Paid(ctx, orderPaymentID); ok {
		return OrderStatusView{OrderPaymentID: orderPaymentID, IsPaid: paid}, nil
	}
	order, err := s.Store.GetOrderByGatewayID(ctx, orderPaymentID)
	if err != nil {
		return OrderStatusView{}, err
	}
	// hanya PAID yang di-cache di sini: nilai false bisa basi kalau Confirm jalan barengan
	if order.IsPaid {
		s.setCache(ctx, orderPaymentID, true)
	}
	return OrderStatusView{OrderPaymentID: orderPaymentID, IsPaid: order.IsPaid}, nil
}

func (s *Service) ListSubscriptions(ctx context.Context) ([]SubscriptionView, error) {
	subs, err := s.Store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return NewSubscriptionViews(subs), nil
}

func (s *Service) markPaid(ctx context.Context, order Order, paymentID, source string) error {
	from := order.Status()
	// re-confirm order yang sudah PAID tetap menulis true, tidak pernah balik ke false
	if err := s.Store.MarkOrderPaid(ctx, order.ID); err != nil {
		return err
	}
	s.setCache(ctx, order.OrderPaymentID, true)

	if !CanTransition(from, StatusPaid) {
		s.Log.Info("order already paid", zap.String("order_payment_id", order.OrderPaymentID), zap.String("source", source))
		return nil
	}
	s.publish(ctx, TopicPaymentConfirmed, EventPaymentConfirmed, order.OrderPaymentID, PaymentConfirmedPayload{
		OrderID:        order.ID,
		OrderPaymentID: order.OrderPaymentID,
		PaymentID:      paymentID,
		SubscriptionID: order.Subscription.ID,
		AmountMinor:    MinorUnits(order.Subscription.Price),
		Currency:       s.Currency,
		Source:         source,
	})
	s.Log.Info("payment confirmed",
		zap.String("order_payment_id", order.OrderPaymentID),
		zap.String("payment_id", paymentID),
		zap.String("source", source),
	)
	return nil
}

func (s *Service) rejected(ctx context.Context, order Order, paymentID, source string) {
	s.Log.Warn("payment signature rejected",
		zap.String("order_payment_id", order.OrderPaymentID),
		zap.String("payment_id", paymentID),
	)
	s.publish(ctx, TopicPaymentSignatureRejected, EventPaymentSignatureRejected, order.OrderPaymentID, PaymentSignatureRejectedPayload{
		OrderID:        order.ID,
		OrderPaymentID: order.OrderPaymentID,
		PaymentID:      paymentID,
		Source:         source,
	})
}

func (s *Service) setCache(ctx context.Context, orderPaymentID string, paid bool) {
	if err := s.Cache.SetPaid(ctx, orderPaymentID, paid); err != nil {
		s.Log.Debug("status cache write failed", zap.String("order_payment_id", orderPaymentID), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, topic, eventType, orderPaymentID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderPaymentID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(topic, PartitionKey(orderPaymentID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// IsClientError reports whether err is caused by the caller's input rather than infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrNotFound)
}
