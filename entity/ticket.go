package entity

import "time"

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Ticket is the durable proof of a paid booking. It is created exactly once
// per order and removed only by cancellation/refund or by the stale-ticket
// sweep after the experience date has passed unused.
type Ticket struct {
	TicketNumber string `json:"ticket_number" db:"ticket_number"`
	OrderID      string `json:"order_id" db:"order_id"`
	PaymentID    string `json:"payment_id" db:"payment_id"`

	UserID       string    `json:"user_id" db:"user_id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	SelectedDate time.Time `json:"selected_date" db:"selected_date"`
	Participants int       `json:"participants" db:"participants"`

	TotalPrice string `json:"total_price" db:"total_price"`
	Tax        string `json:"tax" db:"tax"`
	Discount   string `json:"discount" db:"discount"`
	Currency   string `json:"currency" db:"currency"`

	Status        TicketStatus  `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (t Ticket) Price() Money {
	return Money{Amount: t.TotalPrice, Currency: t.Currency}
}
