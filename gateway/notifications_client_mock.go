package gateway

import (
	"context"
	"sync"

	"bookings/entity"
)

type NotificationsMock struct {
	mock sync.Mutex

	IssuedNotifications    []entity.ProviderNotification
	CancelledNotifications []entity.ProviderNotification
}

func (c *NotificationsMock) TicketIssued(ctx context.Context, notification entity.ProviderNotification) error {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.IssuedNotifications = append(c.IssuedNotifications, notification)

	return nil
}

func (c *NotificationsMock) BookingCancelled(ctx context.Context, notification entity.ProviderNotification) error {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.CancelledNotifications = append(c.CancelledNotifications, notification)

	return nil
}
