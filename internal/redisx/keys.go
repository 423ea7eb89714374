package redisx

import "time"

const (
	// Cache status pembayaran: payment_status:{order_payment_id} -> "true" | "false"
	KeyPaymentStatus = "payment_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
