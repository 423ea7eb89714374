package payments

import "time"

// OrderDateLayout renders order_date as "16 October 2026 02:30 PM".
const OrderDateLayout = "02 January 2006 03:04 PM"

type SubscriptionView struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Price            string    `json:"price"`
	Description      string    `json:"description"`
	DurationInMonths int       `json:"duration_in_months"`
	CreatedAt        time.Time `json:"created_at"`
}

type OrderView struct {
	ID             int64            `json:"id"`
	Subscription   SubscriptionView `json:"subscription"`
	OrderPaymentID string           `json:"order_payment_id"`
	IsPaid         bool             `json:"isPaid"`
	OrderDate      string           `json:"order_date"`
}

type OrderStatusView struct {
	OrderPaymentID string `json:"order_payment_id"`
	IsPaid         bool   `json:"isPaid"`
}

func NewSubscriptionView(s Subscription) SubscriptionView {
	return SubscriptionView{
		ID:               s.ID,
		Name:             s.Name,
		Price:            s.Price.StringFixed(2),
		Description:      s.Description,
		DurationInMonths: s.DurationInMonths,
		CreatedAt:        s.CreatedAt.UTC(),
	}
}

func NewSubscriptionViews(subs []Subscription) []SubscriptionView {
	out := make([]SubscriptionView, 0, len(subs))
	for _, s := range subs {
		out = append(out, NewSubscriptionView(s))
	}
	return out
}

func NewOrderView(o Order) OrderView {
	return OrderView{
		ID:             o.ID,
		Subscription:   NewSubscriptionView(o.Subscription),
		OrderPaymentID: o.OrderPaymentID,
		IsPaid:         o.IsPaid,
		OrderDate:      o.OrderDate.UTC().Format(OrderDateLayout),
	}
}
