package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bookings/entity"
	"bookings/issuance"
)

type postBookingRequest struct {
	ProductID    string    `json:"product_id"`
	SelectedDate time.Time `json:"selected_date"`
	Participants int       `json:"participants"`
	TotalPrice   string    `json:"total_price"`
	Tax          string    `json:"tax"`
	Discount     string    `json:"discount"`
	Currency     string    `json:"currency"`
}

type postBookingResponse struct {
	OrderID string                `json:"order_id"`
	Payment entity.PaymentSession `json:"payment"`
}

type bookingStatusResponse struct {
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	TicketNumber  *string `json:"ticket_number,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

func (s *Server) PostBooking(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}

	var request postBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.ProductID == "" || request.Participants <= 0 || request.TotalPrice == "" || request.Currency == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id, participants, total_price and currency are required")
	}

	if request.Tax == "" {
		request.Tax = "0"
	}
	if request.Discount == "" {
		request.Discount = "0"
	}

	now := time.Now().UTC()
	intent := entity.BookingIntent{
		OrderID:      uuid.NewString(),
		UserID:       user,
		ProductID:    request.ProductID,
		SelectedDate: request.SelectedDate,
		Participants: request.Participants,
		TotalPrice:   request.TotalPrice,
		Tax:          request.Tax,
		Discount:     request.Discount,
		Currency:     request.Currency,
		Status:       entity.IntentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.intentsRepo.Create(c.Request().Context(), intent); err != nil {
		return err
	}

	session, err := s.payments.CreateSession(c.Request().Context(), intent)
	if err != nil {
		// The intent stays PENDING: the client can retry checkout, and the
		// abandoned-intent sweep removes it if they never do.
		return err
	}

	return c.JSON(http.StatusCreated, postBookingResponse{
		OrderID: intent.OrderID,
		Payment: session,
	})
}

// GetBookingStatus is the polling fallback for clients that cannot wait for
// the gateway webhook. For an intent still PENDING it consults the gateway
// directly and resolves the intent if the gateway already reached a terminal
// state.
func (s *Server) GetBookingStatus(c echo.Context) error {
	orderID := c.Param("order_id")

	intent, err := s.intentsRepo.Get(c.Request().Context(), orderID)
	if errors.Is(err, entity.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	if err != nil {
		return err
	}

	if intent.Status == entity.IntentStatusPending {
		return s.resolveFromGateway(c, intent)
	}

	return c.JSON(http.StatusOK, bookingStatusResponse{
		OrderID:       intent.OrderID,
		Status:        string(intent.Status),
		TicketNumber:  intent.TicketNumber,
		FailureReason: intent.FailureReason,
	})
}

func (s *Server) resolveFromGateway(c echo.Context, intent entity.BookingIntent) error {
	ctx := c.Request().Context()

	order, err := s.payments.GetOrder(ctx, intent.OrderID)
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Gateway order lookup failed, reporting stored status")
		return c.JSON(http.StatusOK, bookingStatusResponse{
			OrderID: intent.OrderID,
			Status:  string(intent.Status),
		})
	}

	switch order.Status {
	case entity.OrderStatusPaid:
		result, err := s.issuance.IssueTicket(ctx, intent.OrderID, order.PaymentID)
		if errors.Is(err, issuance.ErrNotFoundOrProcessed) {
			break
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, bookingStatusResponse{
			OrderID:      intent.OrderID,
			Status:       string(entity.IntentStatusPaid),
			TicketNumber: &result.Ticket.TicketNumber,
		})
	case entity.OrderStatusFailed:
		reason := "payment failed"
		if _, err := s.issuance.MarkFailed(ctx, intent.OrderID, reason); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, bookingStatusResponse{
			OrderID:       intent.OrderID,
			Status:        string(entity.IntentStatusFailed),
			FailureReason: &reason,
		})
	}

	return c.JSON(http.StatusOK, bookingStatusResponse{
		OrderID: intent.OrderID,
		Status:  string(entity.IntentStatusPending),
	})
}

type issueTicketResponse struct {
	TicketNumber string `json:"ticket_number"`
	Created      bool   `json:"created"`
}

// PostIssueTicket issues the ticket for an order the gateway reports as paid.
// It exists for operators and for recovery when webhooks were lost, and is as
// idempotent as the webhook path.
func (s *Server) PostIssueTicket(c echo.Context) error {
	orderID := c.Param("order_id")
	ctx := c.Request().Context()

	order, err := s.payments.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status != entity.OrderStatusPaid {
		return echo.NewHTTPError(http.StatusConflict, "order is not paid")
	}

	result, err := s.issuance.IssueTicket(ctx, orderID, order.PaymentID)
	if errors.Is(err, issuance.ErrNotFoundOrProcessed) {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found or already resolved")
	}
	if err != nil {
		return err
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	return c.JSON(status, issueTicketResponse{
		TicketNumber: result.Ticket.TicketNumber,
		Created:      result.Created,
	})
}
