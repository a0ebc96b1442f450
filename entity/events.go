package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type TicketIssued_v1 struct {
	Header       EventHeader `json:"header"`
	TicketNumber string      `json:"ticket_number"`
	OrderID      string      `json:"order_id"`
	UserID       string      `json:"user_id"`
	ProductID    string      `json:"product_id"`
	SelectedDate time.Time   `json:"selected_date"`
	Participants int         `json:"participants"`
	Price        Money       `json:"price"`
}

type BookingCancelled_v1 struct {
	Header       EventHeader `json:"header"`
	TicketNumber string      `json:"ticket_number"`
	OrderID      string      `json:"order_id"`
	UserID       string      `json:"user_id"`
	ProductID    string      `json:"product_id"`
	SelectedDate time.Time   `json:"selected_date"`
	Participants int         `json:"participants"`
	Price        Money       `json:"price"`

	// PayoutID is set for the manual-refund variant, where money movement is
	// deferred to an operator.
	PayoutID string `json:"payout_id,omitempty"`
}
