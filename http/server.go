package http

import (
	"context"
	"errors"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookings/cancellation"
	"bookings/entity"
	"bookings/issuance"
)

type IssuanceService interface {
	IssueTicket(ctx context.Context, orderID, paymentID string) (issuance.IssueResult, error)
	MarkFailed(ctx context.Context, orderID, reason string) (bool, error)
}

type CancellationService interface {
	Cancel(ctx context.Context, ticketNumber, userID string) (cancellation.CancelResult, error)
	RequestManualRefund(ctx context.Context, ticketNumber, userID, payoutID string) error
	Eligibility(ctx context.Context, ticketNumber, userID string) (cancellation.Eligibility, error)
	HandleRefundConfirmed(ctx context.Context, orderID string) error
}

type IntentsRepository interface {
	Create(ctx context.Context, intent entity.BookingIntent) error
	Get(ctx context.Context, orderID string) (entity.BookingIntent, error)
}

type TicketsRepository interface {
	GetForUser(ctx context.Context, ticketNumber, userID string) (entity.Ticket, error)
	FindForUser(ctx context.Context, userID string) ([]entity.Ticket, error)
}

type PaymentsService interface {
	CreateSession(ctx context.Context, intent entity.BookingIntent) (entity.PaymentSession, error)
	GetOrder(ctx context.Context, orderID string) (entity.PaymentOrder, error)
}

type Server struct {
	addr          string
	e             *echo.Echo
	issuance      IssuanceService
	cancellations CancellationService
	intentsRepo   IntentsRepository
	ticketsRepo   TicketsRepository
	payments      PaymentsService
	webhookSecret string
}

func NewServer(
	addr string,
	issuanceService IssuanceService,
	cancellationService CancellationService,
	intentsRepo IntentsRepository,
	ticketsRepo TicketsRepository,
	payments PaymentsService,
	webhookSecret string,
) *Server {
	e := echoHTTP.NewEcho()

	server := &Server{
		addr:          addr,
		e:             e,
		issuance:      issuanceService,
		cancellations: cancellationService,
		intentsRepo:   intentsRepo,
		ticketsRepo:   ticketsRepo,
		payments:      payments,
		webhookSecret: webhookSecret,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/bookings", server.PostBooking)
	e.GET("/bookings/:order_id/status", server.GetBookingStatus)
	e.POST("/bookings/:order_id/issue", server.PostIssueTicket)

	e.POST("/webhooks/payment", server.PostPaymentWebhook)

	e.GET("/tickets", server.GetTickets)
	e.POST("/cancellations/:ticket_number", server.PostCancellation)
	e.GET("/cancellations/:ticket_number/eligibility", server.GetCancellationEligibility)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(ctx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// userID reads the authenticated user set by the edge proxy. The service
// itself does no authentication.
func userID(c echo.Context) (string, error) {
	id := c.Request().Header.Get("X-User-ID")
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "X-User-ID header is required")
	}
	return id, nil
}
