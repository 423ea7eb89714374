package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription adalah plan yang bisa dibeli. Di-seed di luar service ini.
type Subscription struct {
	ID               int64
	Name             string
	Price            decimal.Decimal // 2 desimal, satuan rupee
	Description      string
	DurationInMonths int
	CreatedAt        time.Time
}

// Order = satu percobaan pembayaran untuk satu Subscription.
type Order struct {
	ID             int64
	Subscription   Subscription
	OrderPaymentID string // razorpay order id, unik
	IsPaid         bool
	OrderDate      time.Time // updated on every save
}

func (o Order) Status() Status {
	if o.IsPaid {
		return StatusPaid
	}
	return StatusUnpaid
}

type Receipt struct {
	ID             int64
	OrderID        int64
	OrderPaymentID string
	PaymentID      string
	AmountMinor    int64
	Currency       string
	Source         string
	CreatedAt      time.Time
}
