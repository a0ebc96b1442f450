package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"bookings/entity"
)

type ticketResponse struct {
	TicketNumber string       `json:"ticket_number"`
	OrderID      string       `json:"order_id"`
	ProductID    string       `json:"product_id"`
	SelectedDate time.Time    `json:"selected_date"`
	Participants int          `json:"participants"`
	Price        entity.Money `json:"price"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (s *Server) GetTickets(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}

	tickets, err := s.ticketsRepo.FindForUser(c.Request().Context(), user)
	if err != nil {
		return err
	}

	response := lo.Map(tickets, func(ticket entity.Ticket, _ int) ticketResponse {
		return ticketResponse{
			TicketNumber: ticket.TicketNumber,
			OrderID:      ticket.OrderID,
			ProductID:    ticket.ProductID,
			SelectedDate: ticket.SelectedDate,
			Participants: ticket.Participants,
			Price:        ticket.Price(),
			Status:       string(ticket.Status),
			CreatedAt:    ticket.CreatedAt,
		}
	})

	return c.JSON(http.StatusOK, response)
}
