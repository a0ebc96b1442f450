package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bookings/db/intents"
	"bookings/db/refunds"
	"bookings/db/tickets"
	"bookings/entity"
	"bookings/pubsub/bus"
	"bookings/pubsub/outbox"
)

// Remover deletes a ticket and its booking intent as one logical operation.
// The cancellation event goes through the outbox in the same transaction, so
// the provider notification cannot outlive a rolled-back delete.
type Remover struct {
	db      *sqlx.DB
	intents *intents.PostgresRepository
	tickets *tickets.PostgresRepository
	refunds *refunds.PostgresRepository
}

func NewRemover(
	db *sqlx.DB,
	intentsRepo *intents.PostgresRepository,
	ticketsRepo *tickets.PostgresRepository,
	refundsRepo *refunds.PostgresRepository,
) *Remover {
	return &Remover{
		db:      db,
		intents: intentsRepo,
		tickets: ticketsRepo,
		refunds: refundsRepo,
	}
}

func (r *Remover) Remove(ctx context.Context, ticket entity.Ticket) error {
	return r.remove(ctx, ticket, "")
}

// RemoveWithManualRefund additionally records the payout identifier for the
// operator-driven refund before deleting the booking records.
func (r *Remover) RemoveWithManualRefund(ctx context.Context, ticket entity.Ticket, payoutID string) error {
	return r.remove(ctx, ticket, payoutID)
}

// RemoveByOrderID handles the gateway's refund confirmation. Records already
// removed by a racing cancellation are not an error.
func (r *Remover) RemoveByOrderID(ctx context.Context, orderID string) error {
	ticket, err := r.tickets.GetByOrderID(ctx, orderID)
	if errors.Is(err, entity.ErrNotFound) {
		return r.removeIntentOnly(ctx, orderID)
	}
	if err != nil {
		return err
	}
	return r.remove(ctx, ticket, "")
}

func (r *Remover) remove(ctx context.Context, ticket entity.Ticket, payoutID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	if err = r.tickets.DeleteByNumber(ctx, tx, ticket.TicketNumber); err != nil {
		return err
	}

	if err = r.intents.Delete(ctx, tx, ticket.OrderID); err != nil {
		return err
	}

	if payoutID != "" {
		err = r.refunds.Record(ctx, tx, entity.ManualRefundRequest{
			OrderID:      ticket.OrderID,
			TicketNumber: ticket.TicketNumber,
			PayoutID:     payoutID,
			Amount:       ticket.TotalPrice,
			Currency:     ticket.Currency,
			RequestedBy:  ticket.UserID,
			RequestedAt:  time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return err
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.BookingCancelled_v1{
		Header:       entity.NewEventHeader(),
		TicketNumber: ticket.TicketNumber,
		OrderID:      ticket.OrderID,
		UserID:       ticket.UserID,
		ProductID:    ticket.ProductID,
		SelectedDate: ticket.SelectedDate,
		Participants: ticket.Participants,
		Price:        ticket.Price(),
		PayoutID:     payoutID,
	})
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func (r *Remover) removeIntentOnly(ctx context.Context, orderID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	return r.intents.Delete(ctx, tx, orderID)
}
