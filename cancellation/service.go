package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"bookings/entity"
	"bookings/metrics"
)

const (
	// Window is how long after creation a ticket remains cancellable.
	Window = 48 * time.Hour

	refundTimeout = 15 * time.Second
)

type TicketsRepository interface {
	GetForUser(ctx context.Context, ticketNumber, userID string) (entity.Ticket, error)
}

type BookingRemover interface {
	Remove(ctx context.Context, ticket entity.Ticket) error
	RemoveWithManualRefund(ctx context.Context, ticket entity.Ticket, payoutID string) error
	RemoveByOrderID(ctx context.Context, orderID string) error
}

type PaymentsService interface {
	Refund(ctx context.Context, request entity.RefundRequest) (string, error)
}

// Service revokes tickets. The ordering is strict: the gateway refund must be
// accepted before any record is deleted, so a gateway failure leaves the
// booking fully intact.
type Service struct {
	tickets  TicketsRepository
	remover  BookingRemover
	payments PaymentsService
	window   time.Duration
	now      func() time.Time
}

func New(tickets TicketsRepository, remover BookingRemover, payments PaymentsService) *Service {
	if tickets == nil {
		panic("missing tickets repository")
	}
	if remover == nil {
		panic("missing remover")
	}
	if payments == nil {
		panic("missing payments service")
	}

	return &Service{
		tickets:  tickets,
		remover:  remover,
		payments: payments,
		window:   Window,
		now:      time.Now,
	}
}

type CancelResult struct {
	RefundInitiated bool
	RefundID        string
}

func (s *Service) Cancel(ctx context.Context, ticketNumber, userID string) (CancelResult, error) {
	ticket, err := s.tickets.GetForUser(ctx, ticketNumber, userID)
	if err != nil {
		return CancelResult{}, err
	}

	if s.now().Sub(ticket.CreatedAt) > s.window {
		return CancelResult{}, entity.ErrWindowExpired
	}

	result := CancelResult{}
	if ticket.PaymentStatus == entity.PaymentStatusPaid {
		refundCtx, cancel := context.WithTimeout(ctx, refundTimeout)
		defer cancel()

		refundID, err := s.payments.Refund(refundCtx, entity.RefundRequest{
			OrderID:        ticket.OrderID,
			PaymentID:      ticket.PaymentID,
			Amount:         ticket.Price(),
			IdempotencyKey: fmt.Sprintf("refund-%s-%d", ticket.OrderID, s.now().Unix()),
		})
		if err != nil {
			return CancelResult{}, fmt.Errorf("%w: %s", entity.ErrRefundFailed, err)
		}

		result.RefundInitiated = true
		result.RefundID = refundID
	}

	if err := s.remover.Remove(ctx, ticket); err != nil {
		return CancelResult{}, fmt.Errorf("could not remove booking records: %w", err)
	}

	metrics.RefundsInitiated.WithLabelValues("gateway").Inc()
	log.FromContext(ctx).WithField("ticket_number", ticketNumber).Info("Booking cancelled")

	return result, nil
}

// RequestManualRefund is the alternate-payout variant: the booking records
// are removed immediately and the payout itself is queued for an operator.
func (s *Service) RequestManualRefund(ctx context.Context, ticketNumber, userID, payoutID string) error {
	ticket, err := s.tickets.GetForUser(ctx, ticketNumber, userID)
	if err != nil {
		return err
	}

	if s.now().Sub(ticket.CreatedAt) > s.window {
		return entity.ErrWindowExpired
	}

	if err := s.remover.RemoveWithManualRefund(ctx, ticket, payoutID); err != nil {
		return fmt.Errorf("could not remove booking records: %w", err)
	}

	metrics.RefundsInitiated.WithLabelValues("manual").Inc()
	log.FromContext(ctx).WithField("ticket_number", ticketNumber).Info("Booking cancelled with manual refund")

	return nil
}

type Eligibility struct {
	CanCancel      bool
	HoursRemaining float64
}

func (s *Service) Eligibility(ctx context.Context, ticketNumber, userID string) (Eligibility, error) {
	ticket, err := s.tickets.GetForUser(ctx, ticketNumber, userID)
	if err != nil {
		return Eligibility{}, err
	}

	remaining := s.window - s.now().Sub(ticket.CreatedAt)
	if remaining < 0 {
		return Eligibility{CanCancel: false, HoursRemaining: 0}, nil
	}

	return Eligibility{CanCancel: true, HoursRemaining: remaining.Hours()}, nil
}

// HandleRefundConfirmed is the terminal confirmation of a refund initiated
// out of band. A booking already removed by a racing cancellation or sweep is
// treated as success.
func (s *Service) HandleRefundConfirmed(ctx context.Context, orderID string) error {
	err := s.remover.RemoveByOrderID(ctx, orderID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	return err
}
