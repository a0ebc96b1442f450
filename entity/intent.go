package entity

import "time"

type IntentStatus string

const (
	IntentStatusPending    IntentStatus = "PENDING"
	IntentStatusProcessing IntentStatus = "PROCESSING"
	IntentStatusPaid       IntentStatus = "PAID"
	IntentStatusFailed     IntentStatus = "FAILED"
)

// BookingIntent is a provisional hold on a slot, created when a payment
// session is requested and resolved by the issuance service once the gateway
// reports a terminal payment state.
type BookingIntent struct {
	OrderID      string       `json:"order_id" db:"order_id"`
	UserID       string       `json:"user_id" db:"user_id"`
	ProductID    string       `json:"product_id" db:"product_id"`
	SelectedDate time.Time    `json:"selected_date" db:"selected_date"`
	Participants int          `json:"participants" db:"participants"`
	TotalPrice   string       `json:"total_price" db:"total_price"`
	Tax          string       `json:"tax" db:"tax"`
	Discount     string       `json:"discount" db:"discount"`
	Currency     string       `json:"currency" db:"currency"`
	Status       IntentStatus `json:"status" db:"status"`

	// TicketNumber is set together with the PAID transition.
	TicketNumber  *string `json:"ticket_number" db:"ticket_number"`
	FailureReason *string `json:"failure_reason" db:"failure_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (i BookingIntent) Price() Money {
	return Money{Amount: i.TotalPrice, Currency: i.Currency}
}
