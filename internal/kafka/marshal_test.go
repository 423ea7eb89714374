package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderPaymentID string `json:"order_payment_id"`
		AmountMinor    int64  `json:"amount_minor"`
	}

	got, err := UnwrapPayload[payload](json.RawMessage(`{"order_payment_id":"order_X","amount_minor":49900}`))
	require.NoError(t, err)
	assert.Equal(t, payload{OrderPaymentID: "order_X", AmountMinor: 49900}, got)

	_, err = UnwrapPayload[payload](json.RawMessage(`{"amount_minor":"lots"}`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}

func TestHeader(t *testing.T) {
	m := kafka.Message{Headers: []kafka.Header{
		{Key: "x-event-type", Value: []byte("PaymentConfirmed")},
		{Key: "x-event-version", Value: []byte("1")},
	}}

	v, ok := Header(m, "x-event-type")
	assert.True(t, ok)
	assert.Equal(t, "PaymentConfirmed", v)

	_, ok = Header(m, "x-missing")
	assert.False(t, ok)
}
