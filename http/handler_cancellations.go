package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookings/entity"
)

type postCancellationRequest struct {
	// PayoutID selects the manual-refund path: records are removed immediately
	// and the payout is handled by an operator instead of the gateway.
	PayoutID string `json:"payout_id"`
}

type postCancellationResponse struct {
	TicketNumber    string `json:"ticket_number"`
	RefundInitiated bool   `json:"refund_initiated"`
	RefundID        string `json:"refund_id,omitempty"`
}

type eligibilityResponse struct {
	TicketNumber   string  `json:"ticket_number"`
	CanCancel      bool    `json:"can_cancel"`
	HoursRemaining float64 `json:"hours_remaining"`
}

func (s *Server) PostCancellation(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}

	ticketNumber := c.Param("ticket_number")

	var request postCancellationRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&request); err != nil {
			return err
		}
	}

	if request.PayoutID != "" {
		err := s.cancellations.RequestManualRefund(c.Request().Context(), ticketNumber, user, request.PayoutID)
		if err != nil {
			return cancellationError(err)
		}

		return c.JSON(http.StatusOK, postCancellationResponse{
			TicketNumber:    ticketNumber,
			RefundInitiated: false,
		})
	}

	result, err := s.cancellations.Cancel(c.Request().Context(), ticketNumber, user)
	if err != nil {
		return cancellationError(err)
	}

	return c.JSON(http.StatusOK, postCancellationResponse{
		TicketNumber:    ticketNumber,
		RefundInitiated: result.RefundInitiated,
		RefundID:        result.RefundID,
	})
}

func (s *Server) GetCancellationEligibility(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}

	ticketNumber := c.Param("ticket_number")

	eligibility, err := s.cancellations.Eligibility(c.Request().Context(), ticketNumber, user)
	if errors.Is(err, entity.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, eligibilityResponse{
		TicketNumber:   ticketNumber,
		CanCancel:      eligibility.CanCancel,
		HoursRemaining: eligibility.HoursRemaining,
	})
}

func cancellationError(err error) error {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	case errors.Is(err, entity.ErrWindowExpired):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "cancellation window has expired")
	case errors.Is(err, entity.ErrRefundFailed):
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway rejected the refund")
	default:
		return err
	}
}
