package issuance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	"github.com/lithammer/shortuuid/v3"

	"bookings/entity"
	"bookings/metrics"
	"bookings/pubsub/bus"
	"bookings/pubsub/outbox"
)

// ErrNotFoundOrProcessed is returned when there is neither a PENDING intent
// to claim nor an issued ticket to replay for the order. Webhook ingress
// treats it as an acknowledgeable no-op.
var ErrNotFoundOrProcessed = errors.New("booking intent not found or already processed")

type IntentsRepository interface {
	Get(ctx context.Context, orderID string) (entity.BookingIntent, error)
	ClaimPending(ctx context.Context, orderID string) (bool, error)
	Release(ctx context.Context, orderID string) error
	MarkPaid(ctx context.Context, tx sqlx.ExtContext, orderID, ticketNumber string) error
	MarkFailed(ctx context.Context, orderID, reason string) (bool, error)
}

type TicketsRepository interface {
	Insert(ctx context.Context, tx sqlx.ExtContext, ticket entity.Ticket) error
	GetByOrderID(ctx context.Context, orderID string) (entity.Ticket, error)
}

// Service converts a booking intent into exactly one ticket. The conditional
// PENDING -> PROCESSING update is the only lock in the system: it linearizes
// issuance per order, and the unique order_id constraint on tickets catches
// anything that slips past it.
type Service struct {
	db      *sqlx.DB
	intents IntentsRepository
	tickets TicketsRepository
	now     func() time.Time
}

func New(db *sqlx.DB, intents IntentsRepository, tickets TicketsRepository) *Service {
	if db == nil {
		panic("missing db")
	}
	if intents == nil {
		panic("missing intents repository")
	}
	if tickets == nil {
		panic("missing tickets repository")
	}

	return &Service{
		db:      db,
		intents: intents,
		tickets: tickets,
		now:     time.Now,
	}
}

type IssueResult struct {
	Ticket  entity.Ticket
	Created bool
}

// IssueTicket is safe to call any number of times for the same order:
// webhooks are redelivered and pollers retry, so every call after the first
// successful one is a cheap replay of the existing ticket.
func (s *Service) IssueTicket(ctx context.Context, orderID, paymentID string) (IssueResult, error) {
	claimed, err := s.intents.ClaimPending(ctx, orderID)
	if err != nil {
		return IssueResult{}, fmt.Errorf("could not claim booking intent: %w", err)
	}

	if !claimed {
		// Lost the race or the intent is already resolved. If a ticket
		// exists, this is the idempotent replay path.
		ticket, err := s.tickets.GetByOrderID(ctx, orderID)
		if err == nil {
			metrics.TicketsIssued.WithLabelValues("replayed").Inc()
			return IssueResult{Ticket: ticket, Created: false}, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return IssueResult{}, err
		}

		return IssueResult{}, ErrNotFoundOrProcessed
	}

	intent, err := s.intents.Get(ctx, orderID)
	if err != nil {
		s.release(ctx, orderID)
		return IssueResult{}, fmt.Errorf("could not load claimed intent: %w", err)
	}

	ticket := entity.Ticket{
		TicketNumber:  NewTicketNumber(),
		OrderID:       intent.OrderID,
		PaymentID:     paymentID,
		UserID:        intent.UserID,
		ProductID:     intent.ProductID,
		SelectedDate:  intent.SelectedDate,
		Participants:  intent.Participants,
		TotalPrice:    intent.TotalPrice,
		Tax:           intent.Tax,
		Discount:      intent.Discount,
		Currency:      intent.Currency,
		Status:        entity.TicketStatusActive,
		PaymentStatus: entity.PaymentStatusPaid,
		CreatedAt:     s.now().UTC(),
	}

	err = s.persist(ctx, intent, ticket)
	if errors.Is(err, entity.ErrConflict) {
		// A concurrent attempt already created the ticket (possible only if
		// the claim gate was passed twice, e.g. after a store failover).
		// Recover by returning the winner's ticket.
		metrics.IssuanceConflicts.Inc()

		existing, getErr := s.tickets.GetByOrderID(ctx, orderID)
		if getErr != nil {
			return IssueResult{}, fmt.Errorf("could not load conflicting ticket: %w", getErr)
		}

		if repairErr := s.intents.MarkPaid(ctx, s.db, orderID, existing.TicketNumber); repairErr != nil {
			log.FromContext(ctx).WithError(repairErr).Error("Failed to repair intent after issuance conflict")
		}

		metrics.TicketsIssued.WithLabelValues("replayed").Inc()
		return IssueResult{Ticket: existing, Created: false}, nil
	}
	if err != nil {
		// Roll back to PENDING so a redelivered webhook or poller can retry.
		s.release(ctx, orderID)
		return IssueResult{}, fmt.Errorf("could not persist ticket: %w", err)
	}

	metrics.TicketsIssued.WithLabelValues("created").Inc()
	return IssueResult{Ticket: ticket, Created: true}, nil
}

// MarkFailed records a gateway-reported payment failure. It reports whether a
// PENDING or PROCESSING intent was actually transitioned.
func (s *Service) MarkFailed(ctx context.Context, orderID, reason string) (bool, error) {
	marked, err := s.intents.MarkFailed(ctx, orderID, reason)
	if err != nil {
		return false, fmt.Errorf("could not mark intent failed: %w", err)
	}
	return marked, nil
}

// persist stores the ticket, marks the intent PAID and publishes the issued
// event in one transaction through the outbox.
func (s *Service) persist(ctx context.Context, intent entity.BookingIntent, ticket entity.Ticket) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil && !errors.Is(err, entity.ErrConflict) {
				err = errors.Join(err, rollbackErr)
			}
			return
		}
		err = tx.Commit()
	}()

	if err = s.tickets.Insert(ctx, tx, ticket); err != nil {
		return err
	}

	if err = s.intents.MarkPaid(ctx, tx, intent.OrderID, ticket.TicketNumber); err != nil {
		return err
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return err
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.TicketIssued_v1{
		Header:       entity.NewEventHeaderWithIdempotencyKey(intent.OrderID),
		TicketNumber: ticket.TicketNumber,
		OrderID:      ticket.OrderID,
		UserID:       ticket.UserID,
		ProductID:    ticket.ProductID,
		SelectedDate: ticket.SelectedDate,
		Participants: ticket.Participants,
		Price:        ticket.Price(),
	})
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func (s *Service) release(ctx context.Context, orderID string) {
	if err := s.intents.Release(ctx, orderID); err != nil {
		log.FromContext(ctx).WithError(err).Error("Failed to release claimed intent")
	}
}

// NewTicketNumber returns a human-presentable unique ticket number.
func NewTicketNumber() string {
	return "WC-" + strings.ToUpper(shortuuid.New())
}
