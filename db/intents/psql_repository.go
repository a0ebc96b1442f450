package intents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bookings/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, intent entity.BookingIntent) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO booking_intents
			(order_id, user_id, product_id, selected_date, participants,
			 total_price, tax, discount, currency, status, created_at, updated_at)
		VALUES
			(:order_id, :user_id, :product_id, :selected_date, :participants,
			 :total_price, :tax, :discount, :currency, :status, :created_at, :updated_at)
	`, intent)
	if err != nil {
		return fmt.Errorf("could not store booking intent: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, orderID string) (entity.BookingIntent, error) {
	var intent entity.BookingIntent
	err := r.db.GetContext(ctx, &intent, `
		SELECT * FROM booking_intents WHERE order_id = $1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.BookingIntent{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.BookingIntent{}, fmt.Errorf("could not get booking intent: %w", err)
	}
	return intent, nil
}

// ClaimPending is the issuance concurrency gate: a single conditional update
// that only one concurrent caller can win for a given order. It reports
// whether this caller performed the PENDING -> PROCESSING transition.
func (r *PostgresRepository) ClaimPending(ctx context.Context, orderID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE booking_intents
		SET status = 'PROCESSING', updated_at = now()
		WHERE order_id = $1 AND status = 'PENDING'
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("could not claim booking intent: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// Release rolls a claimed intent back to PENDING so a later retry can attempt
// issuance again.
func (r *PostgresRepository) Release(ctx context.Context, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE booking_intents
		SET status = 'PENDING', updated_at = now()
		WHERE order_id = $1 AND status = 'PROCESSING'
	`, orderID)
	if err != nil {
		return fmt.Errorf("could not release booking intent: %w", err)
	}
	return nil
}

// MarkPaid sets the terminal PAID state together with the ticket reference.
// It is idempotent so the conflict-recovery path can repair an intent that a
// concurrent attempt left behind.
func (r *PostgresRepository) MarkPaid(ctx context.Context, tx sqlx.ExtContext, orderID, ticketNumber string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE booking_intents
		SET status = 'PAID', ticket_number = $2, updated_at = now()
		WHERE order_id = $1
	`, orderID, ticketNumber)
	if err != nil {
		return fmt.Errorf("could not mark booking intent paid: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, orderID, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE booking_intents
		SET status = 'FAILED', failure_reason = $2, updated_at = now()
		WHERE order_id = $1 AND status IN ('PENDING', 'PROCESSING')
	`, orderID, reason)
	if err != nil {
		return false, fmt.Errorf("could not mark booking intent failed: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// Delete removes the intent. A missing row is not an error: cancellation and
// the sweeper may race on the same booking.
func (r *PostgresRepository) Delete(ctx context.Context, tx sqlx.ExtContext, orderID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM booking_intents WHERE order_id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("could not delete booking intent: %w", err)
	}
	return nil
}

// DeleteAbandoned reclaims intents that never received a webhook. Only PENDING
// rows qualify: no ticket can exist for them, so deletion needs no cross-check
// against the tickets table.
func (r *PostgresRepository) DeleteAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM booking_intents
		WHERE status = 'PENDING' AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("could not delete abandoned booking intents: %w", err)
	}
	return res.RowsAffected()
}
