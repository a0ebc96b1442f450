package event

import (
	"context"

	"bookings/entity"
)

type NotificationsService interface {
	TicketIssued(ctx context.Context, notification entity.ProviderNotification) error
	BookingCancelled(ctx context.Context, notification entity.ProviderNotification) error
}

type Handler struct {
	notificationsService NotificationsService
}

func NewHandler(notificationsService NotificationsService) Handler {
	if notificationsService == nil {
		panic("missing notificationsService")
	}

	return Handler{
		notificationsService: notificationsService,
	}
}
