package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/domain/ledger"
	"storefront/internal/domain/payment"
	"storefront/internal/domain/transaction"
	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

const useCaseApplyStatus = "payment.apply_status"

// ApplyGatewayStatus reconciles the local transaction with the status the
// gateway reports for its charge. The mapping is deterministic:
//
//	pending, waiting_for_capture -> stays pending, no side effects
//	succeeded                    -> paid + Reduce, or failed + Revert when
//	                                the customer notification fails
//	canceled                     -> failed, no inventory action
//	anything else                -> ErrUnknownStatus, transaction unchanged
//
// The updated status is always persisted before returning.
func (e *Engine) ApplyGatewayStatus(ctx context.Context, paymentID, gatewayStatus string) (_ transaction.Status, err error) {
	logger := logctx.FromOr(ctx, e.log).With(
		observability.F("use_case", useCaseApplyStatus),
		observability.F("payment_id", paymentID),
	)

	ctx, span := e.tel.Tracer().Start(ctx, spanPrefix+"ApplyGatewayStatus",
		attribute.String("use_case", useCaseApplyStatus),
		attribute.String("payment.id", paymentID),
		attribute.String("gateway.status", gatewayStatus),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var resulting transaction.Status

	defer func() {
		lat := time.Since(start).Seconds()
		e.observe(useCaseApplyStatus, outcome, lat)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		fields := []observability.Field{
			observability.F("gateway_status", gatewayStatus),
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if resulting != "" {
			fields = append(fields, observability.F("transaction_status", string(resulting)))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	t, err := e.txs.FindByPaymentID(ctx, paymentID)
	if err != nil {
		outcome, statusText = "error", "TRANSACTION_LOAD_FAILED"
		return "", fmt.Errorf("reconcile: load transaction: %w", err)
	}
	resulting = t.Status

	switch gatewayStatus {
	case payment.StatusPending, payment.StatusWaitingForCapture:
		// Still awaiting the customer; no local side effects.

	case payment.StatusSucceeded:
		notifyStart := time.Now()
		sent := e.notifier.Send(ctx, t.Form.Contact.Email,
			"Your order is confirmed",
			fmt.Sprintf("Payment for order form %d was received.", t.FormID),
		)
		if sent {
			e.observeExternal(peerNotifier, "send", "success", time.Since(notifyStart).Seconds())
			if err := t.MarkPaid(); err != nil {
				outcome, statusText = "error", "INVALID_TRANSITION"
				return t.Status, err
			}
		} else {
			// Inherited policy: an undeliverable confirmation fails the
			// transaction and returns any reserved stock.
			e.observeExternal(peerNotifier, "send", "error", time.Since(notifyStart).Seconds())
			if err := t.MarkFailed(); err != nil {
				outcome, statusText = "error", "INVALID_TRANSITION"
				return t.Status, err
			}
			statusText = "NOTIFY_FAILED"
		}

	case payment.StatusCanceled:
		// Stock was never reserved for a charge that died pending.
		if err := t.MarkFailed(); err != nil {
			outcome, statusText = "error", "INVALID_TRANSITION"
			return t.Status, err
		}

	default:
		outcome, statusText = "error", "UNKNOWN_GATEWAY_STATUS"
		return t.Status, fmt.Errorf("%w: %q", payment.ErrUnknownStatus, gatewayStatus)
	}

	if err := e.txs.Update(ctx, t); err != nil {
		outcome, statusText = "error", "TRANSACTION_UPDATE_FAILED"
		return t.Status, fmt.Errorf("reconcile: persist status: %w", err)
	}
	resulting = t.Status

	switch t.Status {
	case transaction.StatusPaid:
		if !e.Reduce(ctx, t) {
			statusText = "REDUCE_FAILED"
			logger.Error("stock_reduce_failed",
				observability.F("transaction_id", t.ID),
			)
		}
	case transaction.StatusFailed:
		if gatewayStatus == payment.StatusSucceeded && !e.Revert(ctx, t) {
			statusText = "REVERT_FAILED"
			logger.Error("stock_revert_failed",
				observability.F("transaction_id", t.ID),
			)
		}
	}

	e.publishStatus(ctx, t)

	span.SetAttributes(attribute.String("transaction.status", string(t.Status)))
	return t.Status, nil
}

// Reduce applies the transaction's reservations: every line item of the
// owning form is decremented in one atomic unit. Returns false on shortfall
// or storage failure; the caller decides remediation. Safe to call again
// after success.
func (e *Engine) Reduce(ctx context.Context, t *transaction.Transaction) bool {
	logger := logctx.FromOr(ctx, e.log)

	if t.StockReduced {
		return true
	}

	items := ledgerItems(t.Form.LineItems)
	if err := e.ledger.TryReserveAll(ctx, items); err != nil {
		logger.Warn("reduce_failed",
			observability.F("transaction_id", t.ID),
			observability.F("error", err.Error()),
		)
		return false
	}

	t.StockReduced = true
	if err := e.txs.Update(ctx, t); err != nil {
		logger.Error("reduce_flag_persist_failed",
			observability.F("transaction_id", t.ID),
			observability.F("error", err.Error()),
		)
		return false
	}

	e.publish(ctx, ledger.NewStockReducedEvent(t.ID, items))
	return true
}

// Revert releases the transaction's reservations. It is idempotent and a
// no-op on stock that was never reduced, so applying it to a transaction
// that failed before any reservation cannot over-credit inventory.
func (e *Engine) Revert(ctx context.Context, t *transaction.Transaction) bool {
	logger := logctx.FromOr(ctx, e.log)

	if !t.StockReduced || t.Reverted {
		return true
	}

	items := ledgerItems(t.Form.LineItems)
	if err := e.ledger.ReleaseAll(ctx, items); err != nil {
		logger.Error("revert_failed",
			observability.F("transaction_id", t.ID),
			observability.F("error", err.Error()),
		)
		return false
	}

	t.Reverted = true
	if err := e.txs.Update(ctx, t); err != nil {
		logger.Error("revert_flag_persist_failed",
			observability.F("transaction_id", t.ID),
			observability.F("error", err.Error()),
		)
		return false
	}

	e.publish(ctx, ledger.NewStockRevertedEvent(t.ID, items))
	return true
}

// RefundTransaction reverts a paid transaction: stock is restored and the
// status moves paid -> refunded.
func (e *Engine) RefundTransaction(ctx context.Context, paymentID string) (transaction.Status, error) {
	t, err := e.txs.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return "", fmt.Errorf("reconcile: load transaction: %w", err)
	}
	if err := t.MarkRefunded(); err != nil {
		return t.Status, err
	}
	if !e.Revert(ctx, t) {
		return t.Status, fmt.Errorf("reconcile: revert stock for transaction %d", t.ID)
	}
	if err := e.txs.Update(ctx, t); err != nil {
		return t.Status, fmt.Errorf("reconcile: persist status: %w", err)
	}
	e.publishStatus(ctx, t)
	return t.Status, nil
}

func (e *Engine) publishStatus(ctx context.Context, t *transaction.Transaction) {
	e.publish(ctx, transaction.NewStatusChangedEvent(t))
}

func (e *Engine) publish(ctx context.Context, event interface{ EventName() string }) {
	if e.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(pubCtx, event); err != nil {
		logctx.FromOr(ctx, e.log).Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err.Error()),
		)
	}
}
