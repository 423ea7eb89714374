// Package paymentstest provides in-memory implementations of the payments
// collaborators for tests.
package paymentstest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Store struct {
	mu      sync.Mutex
	subs    []payments.Subscription
	orders  []payments.Order
	ListErr error
	Now     func() time.Time
}

func NewStore(subs ...payments.Subscription) *Store {
	return &Store{subs: subs, Now: func() time.Time { return time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC) }}
}

func (s *Store) GetSubscription(_ context.Context, id int64) (payments.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return payments.Subscription{}, fmt.Errorf("subscription %d: %w", id, payments.ErrNotFound)
}

func (s *Store) ListSubscriptions(context.Context) ([]payments.Subscription, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]payments.Subscription{}, s.subs...), nil
}

func (s *Store) CreateOrder(_ context.Context, sub payments.Subscription, gatewayOrderID string) (payments.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderPaymentID == gatewayOrderID {
			return payments.Order{}, payments.ErrAlreadyExists
		}
	}
	o := payments.Order{
		ID:             int64(len(s.orders) + 1),
		Subscription:   sub,
		OrderPaymentID: gatewayOrderID,
		OrderDate:      s.Now(),
	}
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *Store) GetOrderByGatewayID(_ context.Context, gatewayOrderID string) (payments.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderPaymentID == gatewayOrderID {
			return o, nil
		}
	}
	return payments.Order{}, fmt.Errorf("order %s: %w", gatewayOrderID, payments.ErrNotFound)
}

func (s *Store) MarkOrderPaid(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].IsPaid = true
			s.orders[i].OrderDate = s.Now()
			return nil
		}
	}
	return payments.ErrNotFound
}

// Orders returns a snapshot of every order row.
func (s *Store) Orders() []payments.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]payments.Order{}, s.orders...)
}

// Gateway fakes Razorpay. Signatures listed in Valid are accepted.
type Gateway struct {
	mu            sync.Mutex
	CreateErr     error
	Valid         map[string]bool
	WebhookSig    string
	Requests      []payments.GatewayOrderRequest
	VerifyCalls   int
	nextOrderSeed int
}

func (g *Gateway) CreateOrder(_ context.Context, req payments.GatewayOrderRequest) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.nextOrderSeed++
	return map[string]any{
		"id":       fmt.Sprintf("order_%d", g.nextOrderSeed),
		"entity":   "order",
		"amount":   float64(req.AmountMinor),
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	}, nil
}

func (g *Gateway) VerifyPaymentSignature(_, _, signature string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.VerifyCalls++
	return g.Valid[signature]
}

func (g *Gateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return g.WebhookSig != "" && signature == g.WebhookSig
}

var ErrGatewayDown = errors.New("razorpay: connection refused")

type Message struct {
	Topic string
	Key   string
	Value []byte
}

type Publisher struct {
	mu       sync.Mutex
	Messages []Message
}

func (p *Publisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, Message{Topic: topic, Key: string(key), Value: value})
}

func (p *Publisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		out = append(out, m.Topic)
	}
	return out
}

type Cache struct {
	mu   sync.Mutex
	paid map[string]bool
}

func (c *Cache) SetPaid(_ context.Context, id string, paid bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paid == nil {
		c.paid = map[string]bool{}
	}
	c.paid[id] = paid
	return nil
}

func (c *Cache) Paid(_ context.Context, id string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.paid[id]
	return p, ok
}

// NewService wires a Service over fresh fakes.
func NewService(store *Store, gw *Gateway) (*payments.Service, *Publisher, *Cache) {
	pub, cache := &Publisher{}, &Cache{}
	return &payments.Service{
		Store:       store,
		Gateway:     gw,
		Producer:    pub,
		Cache:       cache,
		Currency:    "INR",
		ServiceName: "payment-api",
		Log:         zap.NewNop(),
	}, pub, cache
}
