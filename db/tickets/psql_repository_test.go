package tickets_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/db"
	"bookings/db/tickets"
	"bookings/entity"
)

func newTicket(selectedDate time.Time) entity.Ticket {
	return entity.Ticket{
		TicketNumber:  "WC-" + shortuuid.New(),
		OrderID:       uuid.NewString(),
		PaymentID:     "pay-1",
		UserID:        "user-" + uuid.NewString(),
		ProductID:     "product-1",
		SelectedDate:  selectedDate,
		Participants:  2,
		TotalPrice:    "100.00",
		Tax:           "10.00",
		Discount:      "0.00",
		Currency:      "EUR",
		Status:        entity.TicketStatusActive,
		PaymentStatus: entity.PaymentStatusPaid,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestInsert_DuplicateOrderIsConflict(t *testing.T) {
	database := db.GetDb(t)
	repo := tickets.NewPostgresRepository(database)
	ctx := context.Background()

	ticket := newTicket(time.Now().UTC().AddDate(0, 0, 7))
	require.NoError(t, repo.Insert(ctx, database, ticket))

	duplicate := newTicket(ticket.SelectedDate)
	duplicate.OrderID = ticket.OrderID

	err := repo.Insert(ctx, database, duplicate)
	assert.ErrorIs(t, err, entity.ErrConflict)

	stored, err := repo.GetByOrderID(ctx, ticket.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ticket.TicketNumber, stored.TicketNumber)
}

func TestGetForUser_ScopedToOwner(t *testing.T) {
	database := db.GetDb(t)
	repo := tickets.NewPostgresRepository(database)
	ctx := context.Background()

	ticket := newTicket(time.Now().UTC().AddDate(0, 0, 7))
	require.NoError(t, repo.Insert(ctx, database, ticket))

	stored, err := repo.GetForUser(ctx, ticket.TicketNumber, ticket.UserID)
	require.NoError(t, err)
	assert.Equal(t, ticket.OrderID, stored.OrderID)

	_, err = repo.GetForUser(ctx, ticket.TicketNumber, "someone-else")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFindForUser(t *testing.T) {
	database := db.GetDb(t)
	repo := tickets.NewPostgresRepository(database)
	ctx := context.Background()

	first := newTicket(time.Now().UTC().AddDate(0, 0, 7))
	second := newTicket(time.Now().UTC().AddDate(0, 0, 14))
	second.UserID = first.UserID

	require.NoError(t, repo.Insert(ctx, database, first))
	require.NoError(t, repo.Insert(ctx, database, second))

	found, err := repo.FindForUser(ctx, first.UserID)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestDeleteByNumber_MissingTicketIsNotAnError(t *testing.T) {
	database := db.GetDb(t)
	repo := tickets.NewPostgresRepository(database)

	assert.NoError(t, repo.DeleteByNumber(context.Background(), database, "WC-DOES-NOT-EXIST"))
}

func TestDeleteExpired_SparesFutureAndUsedTickets(t *testing.T) {
	database := db.GetDb(t)
	repo := tickets.NewPostgresRepository(database)
	ctx := context.Background()

	now := time.Now().UTC()

	past := newTicket(now.AddDate(0, 0, -2))
	pastUsed := newTicket(now.AddDate(0, 0, -2))
	pastUsed.Status = entity.TicketStatusUsed
	future := newTicket(now.AddDate(0, 0, 7))

	require.NoError(t, repo.Insert(ctx, database, past))
	require.NoError(t, repo.Insert(ctx, database, pastUsed))
	require.NoError(t, repo.Insert(ctx, database, future))

	_, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)

	_, err = repo.GetByOrderID(ctx, past.OrderID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = repo.GetByOrderID(ctx, pastUsed.OrderID)
	assert.NoError(t, err, "used tickets are the audit trail and must stay")

	_, err = repo.GetByOrderID(ctx, future.OrderID)
	assert.NoError(t, err)
}
