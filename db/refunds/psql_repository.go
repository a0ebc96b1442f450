package refunds

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookings/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record stores the audit row for a manual-payout refund within the caller's
// transaction. The order id keys the row: repeated requests for the same
// booking overwrite the payout identifier instead of failing.
func (r *PostgresRepository) Record(ctx context.Context, tx sqlx.ExtContext, request entity.ManualRefundRequest) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO manual_refund_requests
			(order_id, ticket_number, payout_id, amount, currency, requested_by, requested_at)
		VALUES
			(:order_id, :ticket_number, :payout_id, :amount, :currency, :requested_by, :requested_at)
		ON CONFLICT (order_id) DO UPDATE
		SET payout_id = EXCLUDED.payout_id, requested_at = EXCLUDED.requested_at
	`, request)
	if err != nil {
		return fmt.Errorf("could not record manual refund request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, orderID string) (entity.ManualRefundRequest, error) {
	var request entity.ManualRefundRequest
	err := r.db.GetContext(ctx, &request, `
		SELECT * FROM manual_refund_requests WHERE order_id = $1
	`, orderID)
	if err != nil {
		return entity.ManualRefundRequest{}, fmt.Errorf("could not get manual refund request: %w", err)
	}
	return request, nil
}
