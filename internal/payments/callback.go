package payments

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CheckoutResult is what Razorpay checkout hands back to the browser after a
// successful payment; the client forwards it as a JSON-encoded string.
type CheckoutResult struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// ParseCheckoutResult decodes the forwarded string. Extra keys are ignored,
// any of the three fields missing or blank is ErrInvalidPayload.
func ParseCheckoutResult(raw string) (CheckoutResult, error) {
	var res CheckoutResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var missing []string
	if strings.TrimSpace(res.OrderID) == "" {
		missing = append(missing, "razorpay_order_id")
	}
	if strings.TrimSpace(res.PaymentID) == "" {
		missing = append(missing, "razorpay_payment_id")
	}
	if strings.TrimSpace(res.Signature) == "" {
		missing = append(missing, "razorpay_signature")
	}
	if len(missing) > 0 {
		return CheckoutResult{}, fmt.Errorf("%w: missing %s", ErrInvalidPayload, strings.Join(missing, ", "))
	}
	return res, nil
}
