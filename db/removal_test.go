package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/db"
	"bookings/db/intents"
	"bookings/db/refunds"
	"bookings/db/tickets"
	"bookings/entity"
	"bookings/pubsub/outbox"
)

var initOutboxOnce sync.Once

type fixture struct {
	remover     *db.Remover
	intentsRepo *intents.PostgresRepository
	ticketsRepo *tickets.PostgresRepository
	refundsRepo *refunds.PostgresRepository
}

func newFixture(t *testing.T) fixture {
	database := db.GetDb(t)

	initOutboxOnce.Do(func() {
		outbox.NewPostgresSubscriber(database.DB, log.NewWatermill(log.FromContext(context.Background())))
	})

	intentsRepo := intents.NewPostgresRepository(database)
	ticketsRepo := tickets.NewPostgresRepository(database)
	refundsRepo := refunds.NewPostgresRepository(database)

	return fixture{
		remover:     db.NewRemover(database, intentsRepo, ticketsRepo, refundsRepo),
		intentsRepo: intentsRepo,
		ticketsRepo: ticketsRepo,
		refundsRepo: refundsRepo,
	}
}

func (f fixture) createBooking(t *testing.T) entity.Ticket {
	ctx := context.Background()
	now := time.Now().UTC()

	intent := entity.BookingIntent{
		OrderID:      uuid.NewString(),
		UserID:       "user-1",
		ProductID:    "product-1",
		SelectedDate: now.AddDate(0, 0, 7),
		Participants: 2,
		TotalPrice:   "100.00",
		Tax:          "10.00",
		Discount:     "0.00",
		Currency:     "EUR",
		Status:       entity.IntentStatusPaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.intentsRepo.Create(ctx, intent))

	ticket := entity.Ticket{
		TicketNumber:  "WC-" + shortuuid.New(),
		OrderID:       intent.OrderID,
		PaymentID:     "pay-1",
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
		CreatedAt:     now,
	}
	require.NoError(t, f.ticketsRepo.Insert(ctx, db.GetDb(t), ticket))

	return ticket
}

func TestRemover_RemovesTicketAndIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.createBooking(t)

	require.NoError(t, f.remover.Remove(ctx, ticket))

	_, err := f.ticketsRepo.GetByOrderID(ctx, ticket.OrderID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.intentsRepo.Get(ctx, ticket.OrderID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRemover_ManualRefundLeavesAuditRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.createBooking(t)

	require.NoError(t, f.remover.RemoveWithManualRefund(ctx, ticket, "payout-42"))

	_, err := f.ticketsRepo.GetByOrderID(ctx, ticket.OrderID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	request, err := f.refundsRepo.Get(ctx, ticket.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "payout-42", request.PayoutID)
	assert.Equal(t, ticket.TicketNumber, request.TicketNumber)
	assert.Equal(t, ticket.UserID, request.RequestedBy)
}

func TestRemover_ByOrderIDWithoutTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	intent := entity.BookingIntent{
		OrderID:      uuid.NewString(),
		UserID:       "user-1",
		ProductID:    "product-1",
		SelectedDate: now.AddDate(0, 0, 7),
		Participants: 2,
		TotalPrice:   "100.00",
		Tax:          "0.00",
		Discount:     "0.00",
		Currency:     "EUR",
		Status:       entity.IntentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.intentsRepo.Create(ctx, intent))

	require.NoError(t, f.remover.RemoveByOrderID(ctx, intent.OrderID))

	_, err := f.intentsRepo.Get(ctx, intent.OrderID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
