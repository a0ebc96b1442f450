package issuance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"bookings/db"
	"bookings/db/intents"
	"bookings/db/tickets"
	"bookings/entity"
	"bookings/issuance"
	"bookings/pubsub/outbox"
)

var initOutboxOnce sync.Once

func newService(t *testing.T) (*issuance.Service, *intents.PostgresRepository, *tickets.PostgresRepository) {
	database := db.GetDb(t)

	// the outbox table must exist before the first transactional publish
	initOutboxOnce.Do(func() {
		outbox.NewPostgresSubscriber(database.DB, log.NewWatermill(log.FromContext(context.Background())))
	})

	intentsRepo := intents.NewPostgresRepository(database)
	ticketsRepo := tickets.NewPostgresRepository(database)

	return issuance.New(database, intentsRepo, ticketsRepo), intentsRepo, ticketsRepo
}

func createIntent(t *testing.T, repo *intents.PostgresRepository) entity.BookingIntent {
	now := time.Now().UTC()
	intent := entity.BookingIntent{
		OrderID:      uuid.NewString(),
		UserID:       "user-1",
		ProductID:    "product-1",
		SelectedDate: now.AddDate(0, 0, 7),
		Participants: 3,
		TotalPrice:   "150.00",
		Tax:          "25.00",
		Discount:     "5.00",
		Currency:     "EUR",
		Status:       entity.IntentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), intent))
	return intent
}

func TestIssueTicket(t *testing.T) {
	service, intentsRepo, _ := newService(t)
	ctx := context.Background()

	intent := createIntent(t, intentsRepo)

	result, err := service.IssueTicket(ctx, intent.OrderID, "pay-1")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.NotEmpty(t, result.Ticket.TicketNumber)
	assert.Equal(t, intent.OrderID, result.Ticket.OrderID)
	assert.Equal(t, "pay-1", result.Ticket.PaymentID)
	assert.Equal(t, entity.PaymentStatusPaid, result.Ticket.PaymentStatus)

	stored, err := intentsRepo.Get(ctx, intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.IntentStatusPaid, stored.Status)
	require.NotNil(t, stored.TicketNumber)
	assert.Equal(t, result.Ticket.TicketNumber, *stored.TicketNumber)
}

func TestIssueTicket_ReplayReturnsExistingTicket(t *testing.T) {
	service, intentsRepo, _ := newService(t)
	ctx := context.Background()

	intent := createIntent(t, intentsRepo)

	first, err := service.IssueTicket(ctx, intent.OrderID, "pay-1")
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := service.IssueTicket(ctx, intent.OrderID, "pay-1")
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Ticket.TicketNumber, second.Ticket.TicketNumber)
}

func TestIssueTicket_ConcurrentCallsCreateOneTicket(t *testing.T) {
	service, intentsRepo, ticketsRepo := newService(t)
	ctx := context.Background()

	intent := createIntent(t, intentsRepo)

	const attempts = 10

	results := make([]issuance.IssueResult, attempts)
	g := errgroup.Group{}
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			// a caller losing the claim race before the winner commits is told
			// to retry, exactly like a redelivered webhook
			for {
				result, err := service.IssueTicket(ctx, intent.OrderID, "pay-1")
				if errors.Is(err, issuance.ErrNotFoundOrProcessed) {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			}
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, result := range results {
		if result.Created {
			created++
		}
		assert.Equal(t, results[0].Ticket.TicketNumber, result.Ticket.TicketNumber)
	}
	assert.Equal(t, 1, created)

	found, err := ticketsRepo.FindForUser(ctx, intent.UserID)
	require.NoError(t, err)

	count := 0
	for _, ticket := range found {
		if ticket.OrderID == intent.OrderID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestIssueTicket_UnknownOrder(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.IssueTicket(context.Background(), uuid.NewString(), "pay-1")
	assert.ErrorIs(t, err, issuance.ErrNotFoundOrProcessed)
}

func TestIssueTicket_FailedIntentIsNotIssuable(t *testing.T) {
	service, intentsRepo, _ := newService(t)
	ctx := context.Background()

	intent := createIntent(t, intentsRepo)

	marked, err := service.MarkFailed(ctx, intent.OrderID, "card declined")
	require.NoError(t, err)
	require.True(t, marked)

	_, err = service.IssueTicket(ctx, intent.OrderID, "pay-1")
	assert.ErrorIs(t, err, issuance.ErrNotFoundOrProcessed)
}

func TestMarkFailed_ResolvedIntentIsLeftAlone(t *testing.T) {
	service, intentsRepo, _ := newService(t)
	ctx := context.Background()

	intent := createIntent(t, intentsRepo)

	_, err := service.IssueTicket(ctx, intent.OrderID, "pay-1")
	require.NoError(t, err)

	marked, err := service.MarkFailed(ctx, intent.OrderID, "late failure event")
	require.NoError(t, err)
	assert.False(t, marked)

	stored, err := intentsRepo.Get(ctx, intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.IntentStatusPaid, stored.Status)
}
