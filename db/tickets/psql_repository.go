package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookings/entity"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists a ticket within the caller's transaction. A unique
// violation on order_id or ticket_number maps to entity.ErrConflict: it means
// a concurrent issuance attempt already created the ticket.
func (r *PostgresRepository) Insert(ctx context.Context, tx sqlx.ExtContext, ticket entity.Ticket) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO tickets
			(ticket_number, order_id, payment_id, user_id, product_id, selected_date,
			 participants, total_price, tax, discount, currency, status, payment_status, created_at)
		VALUES
			(:ticket_number, :order_id, :payment_id, :user_id, :product_id, :selected_date,
			 :participants, :total_price, :tax, :discount, :currency, :status, :payment_status, :created_at)
	`, ticket)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("could not insert ticket: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByOrderID(ctx context.Context, orderID string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT * FROM tickets WHERE order_id = $1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not get ticket: %w", err)
	}
	return ticket, nil
}

// GetForUser loads a ticket scoped to its owner. A ticket owned by someone
// else is indistinguishable from a missing one.
func (r *PostgresRepository) GetForUser(ctx context.Context, ticketNumber, userID string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT * FROM tickets WHERE ticket_number = $1 AND user_id = $2
	`, ticketNumber, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not get ticket: %w", err)
	}
	return ticket, nil
}

func (r *PostgresRepository) FindForUser(ctx context.Context, userID string) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT * FROM tickets WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list tickets: %w", err)
	}
	return tickets, nil
}

// DeleteByNumber removes a ticket within the caller's transaction. Absence is
// not an error.
func (r *PostgresRepository) DeleteByNumber(ctx context.Context, tx sqlx.ExtContext, ticketNumber string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM tickets WHERE ticket_number = $1
	`, ticketNumber)
	if err != nil {
		return fmt.Errorf("could not delete ticket: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByOrderID(ctx context.Context, tx sqlx.ExtContext, orderID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM tickets WHERE order_id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("could not delete ticket: %w", err)
	}
	return nil
}

// DeleteExpired prunes tickets whose experience date has passed without the
// ticket being redeemed. Used tickets are the audit trail and stay.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tickets
		WHERE selected_date < $1::date AND status <> 'used'
	`, before)
	if err != nil {
		return 0, fmt.Errorf("could not delete expired tickets: %w", err)
	}
	return res.RowsAffected()
}
