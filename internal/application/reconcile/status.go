package reconcile

import (
	"context"
	"fmt"
	"time"
)

// CheckPayment polls the gateway for the charge's current status and applies
// it to the local transaction. Returns the gateway's status string, which is
// what the customer-facing status endpoint reports.
func (e *Engine) CheckPayment(ctx context.Context, paymentID string) (string, error) {
	extStart := time.Now()
	charge, err := e.gateway.FindCharge(ctx, paymentID)
	if err != nil {
		e.observeExternal(peerGateway, "find_charge", "error", time.Since(extStart).Seconds())
		return "", fmt.Errorf("reconcile: find charge: %w", err)
	}
	e.observeExternal(peerGateway, "find_charge", "success", time.Since(extStart).Seconds())

	if _, err := e.ApplyGatewayStatus(ctx, paymentID, charge.Status); err != nil {
		return charge.Status, err
	}
	return charge.Status, nil
}
