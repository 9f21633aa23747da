package audit

import (
	"context"

	"storefront/internal/domain/ledger"
	domoutbox "storefront/internal/domain/outbox"
	"storefront/internal/domain/transaction"
	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

// Worker subscribes to reconciliation outcomes and records them: one audit
// log line and one counter bump per event. Transactions are never deleted,
// so together with the transactions table this forms the audit trail.
type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	events     observability.Counter // audit_events_total{event}
}

func New(subscriber domoutbox.Subscriber, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Worker{
		subscriber: subscriber,
		log:        tel.Logger().With(observability.F("service", "audit-worker")),
		events:     tel.Counter(observability.MAuditEvents),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	for _, status := range []transaction.Status{
		transaction.StatusPending,
		transaction.StatusPaid,
		transaction.StatusFailed,
		transaction.StatusRefunded,
	} {
		w.subscriber.Subscribe("transaction."+string(status), w.handle)
	}
	w.subscriber.Subscribe(ledger.StockReducedEvent{}.EventName(), w.handle)
	w.subscriber.Subscribe(ledger.StockRevertedEvent{}.EventName(), w.handle)
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	name := e.EventName()
	w.events.Add(1, observability.L("event", name))

	logger := logctx.FromOr(ctx, w.log)
	switch evt := e.(type) {
	case transaction.StatusChangedEvent:
		logger.Info("audit_transaction",
			observability.F("event", name),
			observability.F("transaction_id", evt.TransactionID),
			observability.F("form_id", evt.FormID),
			observability.F("payment_id", evt.PaymentID),
			observability.F("status", string(evt.Status)),
		)
	case ledger.StockReducedEvent:
		logger.Info("audit_stock",
			observability.F("event", name),
			observability.F("transaction_id", evt.TransactionID),
			observability.F("items", len(evt.Items)),
		)
	case ledger.StockRevertedEvent:
		logger.Info("audit_stock",
			observability.F("event", name),
			observability.F("transaction_id", evt.TransactionID),
			observability.F("items", len(evt.Items)),
		)
	default:
		logger.Info("audit_event",
			observability.F("event", name),
		)
	}
	return nil
}
