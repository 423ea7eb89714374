package payments

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentInitiated         = "PaymentInitiated"
	EventPaymentConfirmed         = "PaymentConfirmed"
	EventPaymentSignatureRejected = "PaymentSignatureRejected"
)

const (
	SourceCheckout = "checkout"
	SourceWebhook  = "webhook"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "payment-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_payment_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type PaymentInitiatedPayload struct {
	OrderID        int64  `json:"order_id"`
	OrderPaymentID string `json:"order_payment_id"`
	SubscriptionID int64  `json:"subscription_id"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
}

type PaymentConfirmedPayload struct {
	OrderID        int64  `json:"order_id"`
	OrderPaymentID string `json:"order_payment_id"`
	PaymentID      string `json:"payment_id"`
	SubscriptionID int64  `json:"subscription_id"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	Source         string `json:"source"` // checkout | webhook
}

type PaymentSignatureRejectedPayload struct {
	OrderID        int64  `json:"order_id"`
	OrderPaymentID string `json:"order_payment_id"`
	PaymentID      string `json:"payment_id"`
	Source         string `json:"source"`
}
