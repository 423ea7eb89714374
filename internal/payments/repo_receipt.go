package payments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReceiptRepo struct{ DB *pgxpool.Pool }

// Insert stores the receipt once per order (idempotent). inserted=false kalau sudah ada.
func (r *ReceiptRepo) Insert(ctx context.Context, rc Receipt) (inserted bool, err error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO payment_receipts(order_id, order_payment_id, payment_id, amount_minor, currency, source)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (order_id) DO NOTHING
	`, rc.OrderID, rc.OrderPaymentID, rc.PaymentID, rc.AmountMinor, rc.Currency, rc.Source)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
