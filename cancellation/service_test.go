package cancellation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/entity"
	"bookings/gateway"
)

type ticketsFake struct {
	tickets map[string]entity.Ticket
}

func (f *ticketsFake) GetForUser(ctx context.Context, ticketNumber, userID string) (entity.Ticket, error) {
	ticket, ok := f.tickets[ticketNumber]
	if !ok || ticket.UserID != userID {
		return entity.Ticket{}, entity.ErrNotFound
	}
	return ticket, nil
}

type removerFake struct {
	removed        []entity.Ticket
	manualRemovals map[string]string
	byOrderID      []string
	byOrderIDErr   error
}

func (f *removerFake) Remove(ctx context.Context, ticket entity.Ticket) error {
	f.removed = append(f.removed, ticket)
	return nil
}

func (f *removerFake) RemoveWithManualRefund(ctx context.Context, ticket entity.Ticket, payoutID string) error {
	if f.manualRemovals == nil {
		f.manualRemovals = map[string]string{}
	}
	f.manualRemovals[ticket.TicketNumber] = payoutID
	return nil
}

func (f *removerFake) RemoveByOrderID(ctx context.Context, orderID string) error {
	f.byOrderID = append(f.byOrderID, orderID)
	return f.byOrderIDErr
}

func paidTicket(createdAt time.Time) entity.Ticket {
	return entity.Ticket{
		TicketNumber:  "WC-TEST1",
		OrderID:       "order-1",
		PaymentID:     "pay-1",
		UserID:        "user-1",
		ProductID:     "product-1",
		SelectedDate:  createdAt.Add(7 * 24 * time.Hour),
		Participants:  2,
		TotalPrice:    "120.00",
		Currency:      "EUR",
		Status:        entity.TicketStatusActive,
		PaymentStatus: entity.PaymentStatusPaid,
		CreatedAt:     createdAt,
	}
}

func newService(ticket entity.Ticket, payments PaymentsService, now time.Time) (*Service, *removerFake) {
	tickets := &ticketsFake{tickets: map[string]entity.Ticket{ticket.TicketNumber: ticket}}
	remover := &removerFake{}

	s := New(tickets, remover, payments)
	s.now = func() time.Time { return now }

	return s, remover
}

func TestCancel_WithinWindowRefundsAndRemoves(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := createdAt.Add(47*time.Hour + 59*time.Minute)

	payments := &gateway.PaymentsMock{}
	s, remover := newService(paidTicket(createdAt), payments, now)

	result, err := s.Cancel(context.Background(), "WC-TEST1", "user-1")
	require.NoError(t, err)

	assert.True(t, result.RefundInitiated)
	assert.NotEmpty(t, result.RefundID)
	require.Len(t, remover.removed, 1)
	assert.Equal(t, "WC-TEST1", remover.removed[0].TicketNumber)

	require.Len(t, payments.Refunds, 1)
	for _, refund := range payments.Refunds {
		assert.Equal(t, "order-1", refund.OrderID)
		assert.Equal(t, "pay-1", refund.PaymentID)
		assert.Equal(t, entity.Money{Amount: "120.00", Currency: "EUR"}, refund.Amount)
	}
}

func TestCancel_AfterWindowIsRejected(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := createdAt.Add(48*time.Hour + time.Minute)

	payments := &gateway.PaymentsMock{}
	s, remover := newService(paidTicket(createdAt), payments, now)

	_, err := s.Cancel(context.Background(), "WC-TEST1", "user-1")
	assert.ErrorIs(t, err, entity.ErrWindowExpired)

	assert.Empty(t, remover.removed)
	assert.Empty(t, payments.Refunds)
}

func TestCancel_RefundFailureLeavesBookingIntact(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	payments := &gateway.PaymentsMock{FailRefunds: true}
	s, remover := newService(paidTicket(createdAt), payments, createdAt.Add(time.Hour))

	_, err := s.Cancel(context.Background(), "WC-TEST1", "user-1")
	assert.ErrorIs(t, err, entity.ErrRefundFailed)

	assert.Empty(t, remover.removed)
}

func TestCancel_UnknownTicketOrWrongUser(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s, _ := newService(paidTicket(createdAt), &gateway.PaymentsMock{}, createdAt.Add(time.Hour))

	_, err := s.Cancel(context.Background(), "WC-MISSING", "user-1")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = s.Cancel(context.Background(), "WC-TEST1", "someone-else")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRequestManualRefund_RecordsPayoutWithoutGatewayCall(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	payments := &gateway.PaymentsMock{FailRefunds: true}
	s, remover := newService(paidTicket(createdAt), payments, createdAt.Add(time.Hour))

	err := s.RequestManualRefund(context.Background(), "WC-TEST1", "user-1", "payout-42")
	require.NoError(t, err)

	assert.Equal(t, "payout-42", remover.manualRemovals["WC-TEST1"])
	assert.Empty(t, payments.Refunds)
}

func TestEligibility(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s, _ := newService(paidTicket(createdAt), &gateway.PaymentsMock{}, createdAt.Add(36*time.Hour))

	eligibility, err := s.Eligibility(context.Background(), "WC-TEST1", "user-1")
	require.NoError(t, err)
	assert.True(t, eligibility.CanCancel)
	assert.InDelta(t, 12.0, eligibility.HoursRemaining, 0.01)

	s.now = func() time.Time { return createdAt.Add(49 * time.Hour) }

	eligibility, err = s.Eligibility(context.Background(), "WC-TEST1", "user-1")
	require.NoError(t, err)
	assert.False(t, eligibility.CanCancel)
	assert.Zero(t, eligibility.HoursRemaining)
}

func TestHandleRefundConfirmed_MissingBookingIsNotAnError(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s, remover := newService(paidTicket(createdAt), &gateway.PaymentsMock{}, createdAt)
	remover.byOrderIDErr = entity.ErrNotFound

	err := s.HandleRefundConfirmed(context.Background(), "order-gone")
	assert.NoError(t, err)
	assert.Equal(t, []string{"order-gone"}, remover.byOrderID)
}
