package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"bookings/issuance"
)

type gatewayEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

type webhookAck struct {
	Received bool `json:"received"`
}

// PostPaymentWebhook is the gateway's delivery endpoint. The gateway retries
// anything that is not a 2xx, so an authenticated, well-formed event is always
// acknowledged with 200, even when it is a duplicate or refers to an order we
// no longer know. Only genuine processing failures propagate as errors.
func (s *Server) PostPaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	logger := log.FromContext(ctx)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	if s.webhookSecret == "" {
		logger.Warn("Webhook secret is not configured, accepting unsigned gateway events")
	} else {
		signature := c.Request().Header.Get("X-Gateway-Signature")
		timestamp := c.Request().Header.Get("X-Gateway-Timestamp")

		if signature == "" || timestamp == "" || !validSignature(s.webhookSecret, timestamp, body, signature) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
		}
	}

	var event gatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed event payload")
	}

	logger = logger.WithField("event_id", event.ID).WithField("event_type", event.Type)

	switch event.Type {
	case "test.ping":
		// Sent by the gateway when an endpoint is registered.

	case "payment.succeeded":
		result, err := s.issuance.IssueTicket(ctx, event.OrderID, event.PaymentID)
		if errors.Is(err, issuance.ErrNotFoundOrProcessed) {
			logger.WithField("order_id", event.OrderID).Info("Payment event for unknown or resolved order")
			break
		}
		if err != nil {
			return err
		}
		if !result.Created {
			logger.WithField("order_id", event.OrderID).Info("Duplicate payment event replayed existing ticket")
		}

	case "payment.failed":
		reason := event.Reason
		if reason == "" {
			reason = "payment failed"
		}
		marked, err := s.issuance.MarkFailed(ctx, event.OrderID, reason)
		if err != nil {
			return err
		}
		if !marked {
			logger.WithField("order_id", event.OrderID).Info("Failure event for unknown or resolved order")
		}

	case "refund.succeeded":
		if err := s.cancellations.HandleRefundConfirmed(ctx, event.OrderID); err != nil {
			return err
		}

	default:
		logger.Info("Ignoring unrecognized gateway event type")
	}

	return c.JSON(http.StatusOK, webhookAck{Received: true})
}
