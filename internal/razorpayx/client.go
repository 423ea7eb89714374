package razorpayx

import (
	"context"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Client adapts the Razorpay SDK to payments.Gateway.
type Client struct {
	api           *razorpay.Client
	keySecret     string
	webhookSecret string
}

// requestTimeout bounds every SDK HTTP call; ctx deadlines are honoured on top of it.
const requestTimeout = 8 * time.Second

func New(keyID, keySecret, webhookSecret string) *Client {
	api := razorpay.NewClient(keyID, keySecret)
	api.Order.Request.SetTimeout(int16(requestTimeout / time.Second))
	return &Client{
		api:           api,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

type createResult struct {
	order map[string]interface{}
	err   error
}

// CreateOrder opens an auto-capture order (payment_capture=1) and returns
// Razorpay's order entity as-is. The SDK takes no context, so the call runs in
// its own goroutine and is abandoned when ctx ends (requestTimeout still caps it).
func (c *Client) CreateOrder(ctx context.Context, req payments.GatewayOrderRequest) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"payment_capture": 1,
	}
	if req.Receipt != "" {
		data["receipt"] = req.Receipt
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	done := make(chan createResult, 1)
	go func() {
		order, err := c.api.Order.Create(data, nil)
		done <- createResult{order: order, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.order, res.err
	}
}

// VerifyPaymentSignature checks the checkout signature, HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, c.keySecret)
}

func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.webhookSecret == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), signature, c.webhookSecret)
}
