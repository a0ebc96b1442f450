package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookings/entity"
)

// PaymentsClient talks to the external payment gateway. All money movement
// happens on the gateway side, this client only opens sessions, reads order
// state and requests refunds.
type PaymentsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPaymentsClient(baseURL, apiKey string) *PaymentsClient {
	return &PaymentsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *PaymentsClient) CreateSession(ctx context.Context, intent entity.BookingIntent) (entity.PaymentSession, error) {
	body := map[string]any{
		"order_id":  intent.OrderID,
		"amount":    intent.TotalPrice,
		"currency":  intent.Currency,
		"reference": intent.ProductID,
	}

	var session entity.PaymentSession
	err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", body, http.StatusCreated, &session)
	if err != nil {
		return entity.PaymentSession{}, fmt.Errorf("could not create payment session: %w", err)
	}

	return session, nil
}

func (c *PaymentsClient) GetOrder(ctx context.Context, orderID string) (entity.PaymentOrder, error) {
	var order entity.PaymentOrder
	err := c.do(ctx, http.MethodGet, "/v1/orders/"+orderID, nil, http.StatusOK, &order)
	if err != nil {
		return entity.PaymentOrder{}, fmt.Errorf("could not get payment order: %w", err)
	}

	return order, nil
}

// Refund asks the gateway to return the money for an order. The gateway
// deduplicates on the idempotency key, so retries are safe.
func (c *PaymentsClient) Refund(ctx context.Context, request entity.RefundRequest) (string, error) {
	var resp struct {
		RefundID string `json:"refund_id"`
	}

	err := c.do(ctx, http.MethodPost, "/v1/refunds", request, http.StatusOK, &resp)
	if err != nil {
		return "", fmt.Errorf("could not request refund: %w", err)
	}

	return resp.RefundID, nil
}

func (c *PaymentsClient) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status code for %s %s: %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
