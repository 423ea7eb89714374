package razorpayx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, msg string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := New("rzp_test_key", "key_secret", "")
	good := sign("key_secret", "order_X|pay_Y")

	assert.True(t, c.VerifyPaymentSignature("order_X", "pay_Y", good))
	assert.False(t, c.VerifyPaymentSignature("order_X", "pay_Z", good))
	assert.False(t, c.VerifyPaymentSignature("order_X", "pay_Y", sign("other_secret", "order_X|pay_Y")))
	assert.False(t, c.VerifyPaymentSignature("order_X", "pay_Y", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"order.paid","payload":{}}`)

	c := New("rzp_test_key", "key_secret", "hook_secret")
	assert.True(t, c.VerifyWebhookSignature(body, sign("hook_secret", string(body))))
	assert.False(t, c.VerifyWebhookSignature(body, sign("key_secret", string(body))))

	disabled := New("rzp_test_key", "key_secret", "")
	assert.False(t, disabled.VerifyWebhookSignature(body, sign("", string(body))))
}

func TestCreateOrderHonoursCancelledContext(t *testing.T) {
	c := New("rzp_test_key", "key_secret", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateOrder(ctx, payments.GatewayOrderRequest{AmountMinor: 49900, Currency: "INR"})
	require.ErrorIs(t, err, context.Canceled)
}

func gatewayAt(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New("rzp_test_key", "key_secret", "")
	c.api.Order.Request.BaseURL = srv.URL
	return c
}

func TestCreateOrderSendsAutoCaptureOrder(t *testing.T) {
	var got map[string]any
	c := gatewayAt(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "key_secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_IluGWxBm9U8zJ8","entity":"order","amount":49900,"currency":"INR","status":"created"}`))
	})

	order, err := c.CreateOrder(context.Background(), payments.GatewayOrderRequest{
		AmountMinor: 49900,
		Currency:    "INR",
		Receipt:     "rcpt-1",
		Notes:       map[string]string{"subscription_id": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_IluGWxBm9U8zJ8", order["id"])

	// JSON numbers decode as float64
	assert.Equal(t, float64(49900), got["amount"])
	assert.Equal(t, "INR", got["currency"])
	assert.Equal(t, float64(1), got["payment_capture"])
	assert.Equal(t, "rcpt-1", got["receipt"])
	assert.Equal(t, map[string]any{"subscription_id": "3"}, got["notes"])
}

func TestCreateOrderReturnsErrorOnBadRequest(t *testing.T) {
	c := gatewayAt(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	})

	order, err := c.CreateOrder(context.Background(), payments.GatewayOrderRequest{AmountMinor: 0, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be atleast")
	assert.Nil(t, order)
}

func TestCreateOrderStopsWaitingWhenContextExpires(t *testing.T) {
	release := make(chan struct{})
	c := gatewayAt(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	// runs before srv.Close so the blocked handler can return
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.CreateOrder(ctx, payments.GatewayOrderRequest{AmountMinor: 49900, Currency: "INR"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewSetsRequestTimeout(t *testing.T) {
	c := New("rzp_test_key", "key_secret", "")
	assert.Equal(t, requestTimeout, c.api.Order.Request.HTTPClient.Timeout)
}
