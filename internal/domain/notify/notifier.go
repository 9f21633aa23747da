package notify

import "context"

// Notifier delivers customer-facing messages. Send reports failure as false
// and never panics; the reconciliation engine treats the boolean as part of
// the payment outcome (inherited coupling, kept behind this port so the
// policy can be revisited in isolation).
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) bool
}
