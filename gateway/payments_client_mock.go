package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bookings/entity"
)

type PaymentsMock struct {
	mock sync.Mutex

	// FailRefunds makes every Refund call return an error.
	FailRefunds bool

	// Orders is the gateway-side order state returned by GetOrder.
	Orders map[string]entity.PaymentOrder

	CreatedSessions []entity.BookingIntent
	Refunds         map[string]entity.RefundRequest
}

func (c *PaymentsMock) CreateSession(ctx context.Context, intent entity.BookingIntent) (entity.PaymentSession, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.CreatedSessions = append(c.CreatedSessions, intent)

	return entity.PaymentSession{
		SessionID:   "mocked-session-" + intent.OrderID,
		RedirectURL: "https://gateway.example.com/checkout/" + intent.OrderID,
	}, nil
}

func (c *PaymentsMock) GetOrder(ctx context.Context, orderID string) (entity.PaymentOrder, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	order, ok := c.Orders[orderID]
	if !ok {
		return entity.PaymentOrder{
			OrderID: orderID,
			Status:  entity.OrderStatusPending,
		}, nil
	}

	return order, nil
}

func (c *PaymentsMock) Refund(ctx context.Context, request entity.RefundRequest) (string, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.FailRefunds {
		return "", errors.New("mocked gateway refund failure")
	}

	if c.Refunds == nil {
		c.Refunds = make(map[string]entity.RefundRequest)
	}

	c.Refunds[request.IdempotencyKey] = request

	return fmt.Sprintf("mocked-refund-%s", uuid.NewString()), nil
}
