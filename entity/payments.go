package entity

import "time"

// PaymentSession is the gateway-side checkout session the client is redirected
// to after creating a booking.
type PaymentSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// PaymentOrder is the gateway's view of an order, used by the status-polling
// fallback when a webhook has not arrived yet.
type PaymentOrder struct {
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	PaymentID string      `json:"payment_id"`
}

type RefundRequest struct {
	OrderID        string `json:"order_id"`
	PaymentID      string `json:"payment_id"`
	Amount         Money  `json:"amount"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ManualRefundRequest is the audit record for the alternate-payout refund
// path: booking records are removed immediately and the payout itself is left
// to an operator.
type ManualRefundRequest struct {
	OrderID      string    `json:"order_id" db:"order_id"`
	TicketNumber string    `json:"ticket_number" db:"ticket_number"`
	PayoutID     string    `json:"payout_id" db:"payout_id"`
	Amount       string    `json:"amount" db:"amount"`
	Currency     string    `json:"currency" db:"currency"`
	RequestedBy  string    `json:"requested_by" db:"requested_by"`
	RequestedAt  time.Time `json:"requested_at" db:"requested_at"`
}

// ProviderNotification is the payload sent to the experience provider when a
// ticket is issued or a booking is cancelled. Delivery is best-effort and must
// never feed back into the booking state machine.
type ProviderNotification struct {
	TicketNumber string    `json:"ticket_number"`
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	SelectedDate time.Time `json:"selected_date"`
	Participants int       `json:"participants"`
}
