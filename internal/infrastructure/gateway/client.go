package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/payment"
)

// Client talks to the external payment service over its REST API. All calls
// are synchronous with a bounded timeout; a timeout or network failure maps
// to payment.ErrUnavailable and the caller commits nothing locally.
type Client struct {
	baseURL   string
	shopID    string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, shopID, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		shopID:    shopID,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type confirmationPayload struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type chargePayload struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Amount       payment.Amount      `json:"amount"`
	Confirmation confirmationPayload `json:"confirmation"`
}

type createChargePayload struct {
	Amount       payment.Amount      `json:"amount"`
	Confirmation confirmationPayload `json:"confirmation"`
	Capture      bool                `json:"capture"`
	Description  string              `json:"description,omitempty"`
}

func (c *Client) CreateCharge(ctx context.Context, req payment.CreateChargeRequest) (*payment.Charge, error) {
	body, err := json.Marshal(createChargePayload{
		Amount: req.Amount,
		Confirmation: confirmationPayload{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Capture:     true,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: encode create charge: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", req.IdempotencyKey)
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	return c.do(httpReq)
}

func (c *Client) FindCharge(ctx context.Context, id string) (*payment.Charge, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*payment.Charge, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: gateway returned %d", payment.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload chargePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	return &payment.Charge{
		ID:              payload.ID,
		ConfirmationURL: payload.Confirmation.ConfirmationURL,
		Status:          payload.Status,
	}, nil
}
