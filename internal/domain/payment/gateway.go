package payment

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers network failures and timeouts reaching the
	// gateway; retryable, and never leaves a half-applied transaction.
	ErrUnavailable = errors.New("payment: gateway unavailable")
	// ErrUnknownStatus marks a gateway status outside the documented
	// vocabulary; the local transaction is left unchanged.
	ErrUnknownStatus = errors.New("payment: unknown gateway status")
)

// Gateway status vocabulary. Anything else is ErrUnknownStatus.
const (
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusSucceeded         = "succeeded"
	StatusCanceled          = "canceled"
)

// Amount is the gateway wire format: decimal string value plus currency code.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Charge is the gateway's view of one payment.
type Charge struct {
	ID              string
	ConfirmationURL string
	Status          string
}

type CreateChargeRequest struct {
	Amount Amount
	// ReturnURL is where the gateway redirects the customer after payment.
	ReturnURL string
	// IdempotencyKey guards retried requests against duplicate charges.
	IdempotencyKey string
	Description    string
}

// Gateway wraps the external payment service. Calls are synchronous
// request/response with a bounded timeout.
type Gateway interface {
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error)
	FindCharge(ctx context.Context, id string) (*Charge, error)
}
