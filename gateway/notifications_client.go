package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookings/entity"
)

// NotificationsClient informs the experience provider about issued and
// cancelled tickets. Failures are retried by the message router, never by the
// booking flow itself.
type NotificationsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotificationsClient(baseURL string) *NotificationsClient {
	return &NotificationsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *NotificationsClient) TicketIssued(ctx context.Context, notification entity.ProviderNotification) error {
	return c.post(ctx, "/notifications/ticket-issued", notification)
}

func (c *NotificationsClient) BookingCancelled(ctx context.Context, notification entity.ProviderNotification) error {
	return c.post(ctx, "/notifications/booking-cancelled", notification)
}

func (c *NotificationsClient) post(ctx context.Context, path string, notification entity.ProviderNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("could not marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code for POST %s: %d", path, resp.StatusCode)
	}

	return nil
}
