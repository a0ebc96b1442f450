package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"bookings/cancellation"
	"bookings/db"
	"bookings/db/intents"
	"bookings/db/refunds"
	"bookings/db/tickets"
	"bookings/http"
	"bookings/issuance"
	"bookings/pubsub"
	"bookings/pubsub/event"
	"bookings/pubsub/outbox"
	"bookings/sweeper"
)

func init() {
	log.Init(logrus.InfoLevel)
}

// PaymentsService is the full payment gateway surface the service depends on.
type PaymentsService interface {
	http.PaymentsService
	cancellation.PaymentsService
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	sweeper         *sweeper.Sweeper
}

func New(
	addr string,
	dbConn *sqlx.DB,
	redisClient *redis.Client,
	paymentsService PaymentsService,
	notificationsService event.NotificationsService,
	webhookSecret string,
) Service {
	intentsRepo := intents.NewPostgresRepository(dbConn)
	ticketsRepo := tickets.NewPostgresRepository(dbConn)
	refundsRepo := refunds.NewPostgresRepository(dbConn)

	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventsHandler := event.NewHandler(notificationsService)

	postgresSubscriber := outbox.NewPostgresSubscriber(dbConn.DB, watermillLogger)
	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		postgresSubscriber,
		redisPublisher,
		eventProcessorConfig,
		eventsHandler,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	issuanceService := issuance.New(dbConn, intentsRepo, ticketsRepo)

	remover := db.NewRemover(dbConn, intentsRepo, ticketsRepo, refundsRepo)
	cancellationService := cancellation.New(ticketsRepo, remover, paymentsService)

	bookingSweeper := sweeper.New(intentsRepo, ticketsRepo)

	httpServer := http.NewServer(
		addr,
		issuanceService,
		cancellationService,
		intentsRepo,
		ticketsRepo,
		paymentsService,
		webhookSecret,
	)

	return Service{
		db:              dbConn,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		sweeper:         bookingSweeper,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the service should not report healthy before the router is consuming
		<-s.watermillRouter.Running()
		return s.httpServer.Run(ctx)
	})

	g.Go(func() error {
		return s.sweeper.Run(ctx)
	})

	return g.Wait()
}
