package event

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"bookings/entity"
)

// Provider notifications are fire-and-forget relative to the booking state
// machine: the events are consumed after the issuing transaction committed,
// and failures are retried against the notifications service only.

func (h Handler) NotifyProviderOnIssuedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyProviderOnIssued",
		func(ctx context.Context, event *entity.TicketIssued_v1) error {
			log.FromContext(ctx).WithField("ticket_number", event.TicketNumber).Info("Notifying provider about issued ticket")

			return h.notificationsService.TicketIssued(ctx, entity.ProviderNotification{
				TicketNumber: event.TicketNumber,
				OrderID:      event.OrderID,
				ProductID:    event.ProductID,
				SelectedDate: event.SelectedDate,
				Participants: event.Participants,
			})
		},
	)
}

func (h Handler) NotifyProviderOnCancelledHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyProviderOnCancelled",
		func(ctx context.Context, event *entity.BookingCancelled_v1) error {
			log.FromContext(ctx).WithField("ticket_number", event.TicketNumber).Info("Notifying provider about cancelled booking")

			return h.notificationsService.BookingCancelled(ctx, entity.ProviderNotification{
				TicketNumber: event.TicketNumber,
				OrderID:      event.OrderID,
				ProductID:    event.ProductID,
				SelectedDate: event.SelectedDate,
				Participants: event.Participants,
			})
		},
	)
}
