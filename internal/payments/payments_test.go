package payments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		price     string
		exact     int64
		truncated int64
	}{
		{"499.00", 49900, 49900},
		{"499.99", 49999, 49900},
		{"0.50", 50, 0},
		{"199.005", 19901, 19900},
		{"1", 100, 100},
	}
	for _, tc := range cases {
		p := decimal.RequireFromString(tc.price)
		assert.Equal(t, tc.exact, MinorUnits(p), tc.price)
		assert.Equal(t, tc.truncated, TruncatedMinorUnits(p), tc.price)
	}
}

func TestParseCheckoutResult(t *testing.T) {
	res, err := ParseCheckoutResult(`{"razorpay_payment_id":"pay_Y","razorpay_order_id":"order_X","razorpay_signature":"sig_Z","extra":1}`)
	require.NoError(t, err)
	assert.Equal(t, CheckoutResult{OrderID: "order_X", PaymentID: "pay_Y", Signature: "sig_Z"}, res)

	_, err = ParseCheckoutResult(`{"razorpay_order_id":"order_X","razorpay_payment_id":"pay_Y"}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.ErrorContains(t, err, "razorpay_signature")

	_, err = ParseCheckoutResult(`{"razorpay_order_id":"  ","razorpay_payment_id":"pay_Y","razorpay_signature":"s"}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseCheckoutResult(`not json`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusUnpaid, StatusPaid))
	assert.False(t, CanTransition(StatusPaid, StatusUnpaid))
	assert.False(t, CanTransition(StatusPaid, StatusPaid))
	assert.False(t, CanTransition(StatusUnpaid, StatusUnpaid))
}

func TestOrderViewShape(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o := Order{
		ID: 7,
		Subscription: Subscription{
			ID: 1, Name: "Standard", Price: decimal.RequireFromString("499"),
			Description: "HD", DurationInMonths: 3, CreatedAt: created,
		},
		OrderPaymentID: "order_X",
		OrderDate:      time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC),
	}

	b, err := json.Marshal(NewOrderView(o))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"subscription": {
			"id": 1, "name": "Standard", "price": "499.00", "description": "HD",
			"duration_in_months": 3, "created_at": "2026-01-02T03:04:05Z"
		},
		"order_payment_id": "order_X",
		"isPaid": false,
		"order_date": "16 October 2026 02:30 PM"
	}`, string(b))
}

func TestSubscriptionViewsEmptyIsArray(t *testing.T) {
	b, err := json.Marshal(NewSubscriptionViews(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
