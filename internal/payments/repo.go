package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

const uniqueViolation = "23505"

const subscriptionCols = `s.id, s.name, s.price::text, s.description, s.duration_in_months, s.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner, extra ...any) (Subscription, error) {
	var (
		s     Subscription
		price string
	)
	dest := append([]any{&s.ID, &s.Name, &price, &s.Description, &s.DurationInMonths, &s.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Subscription{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Subscription{}, fmt.Errorf("subscription %d price %q: %w", s.ID, price, err)
	}
	s.Price = p
	return s, nil
}

func (r *Repo) GetSubscription(ctx context.Context, id int64) (Subscription, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+subscriptionCols+` FROM subscriptions s WHERE s.id=$1`, id)
	s, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	return s, err
}

// ListSubscriptions returns rows in storage order; callers sort if they care.
func (r *Repo) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+subscriptionCols+` FROM subscriptions s`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateOrder inserts an unpaid order for sub. A reused gateway order id is ErrAlreadyExists.
func (r *Repo) CreateOrder(ctx context.Context, sub Subscription, gatewayOrderID string) (Order, error) {
	o := Order{Subscription: sub, OrderPaymentID: gatewayOrderID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders(subscription_id, order_payment_id, is_paid, order_date)
		VALUES ($1, $2, false, now())
		RETURNING id, is_paid, order_date
	`, sub.ID, gatewayOrderID).Scan(&o.ID, &o.IsPaid, &o.OrderDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Order{}, fmt.Errorf("order_payment_id %s: %w", gatewayOrderID, ErrAlreadyExists)
		}
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (Order, error) {
	var o Order
	row := r.DB.QueryRow(ctx, `
		SELECT `+subscriptionCols+`, o.id, o.order_payment_id, o.is_paid, o.order_date
		FROM orders o JOIN subscriptions s ON s.id = o.subscription_id
		WHERE o.order_payment_id=$1`, gatewayOrderID)
	sub, err := scanSubscription(row, &o.ID, &o.OrderPaymentID, &o.IsPaid, &o.OrderDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %s: %w", gatewayOrderID, ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	o.Subscription = sub
	return o, nil
}

// MarkOrderPaid sets is_paid. Tidak ada lock/tx: konfirmasi paralel sama-sama
// menulis true, hasil akhirnya konvergen (last write wins).
func (r *Repo) MarkOrderPaid(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET is_paid=true, order_date=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order id %d: %w", id, ErrNotFound)
	}
	return nil
}
