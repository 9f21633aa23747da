package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/form"
	"storefront/internal/domain/ledger"
	"storefront/internal/domain/payment"
	"storefront/internal/domain/transaction"
	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

const useCaseOpenPayment = "payment.open"

// OpenOrFindPending returns the payment handle for a form, creating an
// external charge and a pending transaction when none exists yet. Retried
// requests resolve the existing pending transaction instead of charging
// twice; a concurrent-create race is settled by the storage unique constraint
// and recovered with a lookup.
func (e *Engine) OpenOrFindPending(ctx context.Context, formID uint, credentials string) (_ *PaymentHandle, err error) {
	logger := logctx.FromOr(ctx, e.log).With(observability.F("use_case", useCaseOpenPayment))

	ctx, span := e.tel.Tracer().Start(ctx, spanPrefix+"OpenPayment",
		attribute.String("use_case", useCaseOpenPayment),
		attribute.Int("form.id", int(formID)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		e.observe(useCaseOpenPayment, outcome, lat)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		fields := []observability.Field{
			observability.F("form_id", formID),
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	f, err := e.forms.FindByID(ctx, formID)
	if err != nil {
		outcome, statusText = "error", "FORM_LOAD_FAILED"
		return nil, fmt.Errorf("reconcile: load form: %w", err)
	}
	if len(f.LineItems) == 0 {
		outcome, statusText = "error", "FORM_EMPTY"
		return nil, form.ErrNoLineItems
	}

	// Idempotent retry path: an open pending transaction means a charge was
	// already created; re-resolve it instead of charging again.
	if existing, findErr := e.txs.FindPendingByForm(ctx, formID); findErr == nil {
		handle, resolveErr := e.resolveExisting(ctx, existing)
		if resolveErr != nil {
			outcome, statusText = "error", "CHARGE_RESOLVE_FAILED"
			return nil, resolveErr
		}
		statusText = "PENDING_REUSED"
		span.AddEvent("payment.pending_reused")
		return handle, nil
	} else if !errors.Is(findErr, transaction.ErrNotFound) {
		outcome, statusText = "error", "PENDING_LOOKUP_FAILED"
		return nil, fmt.Errorf("reconcile: pending lookup: %w", findErr)
	}

	total, err := e.formTotal(ctx, f)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientStock) {
			outcome, statusText = "error", "INSUFFICIENT_STOCK"
		} else {
			outcome, statusText = "error", "TOTAL_FAILED"
		}
		return nil, err
	}

	secret := uuid.New().String()

	extStart := time.Now()
	charge, err := e.gateway.CreateCharge(ctx, payment.CreateChargeRequest{
		Amount:         payment.Amount{Value: total.Decimal(), Currency: total.Currency},
		ReturnURL:      e.returnURL,
		IdempotencyKey: secret,
		Description:    credentials,
	})
	if err != nil {
		e.observeExternal(peerGateway, "create_charge", "error", time.Since(extStart).Seconds())
		outcome, statusText = "error", "CHARGE_CREATE_FAILED"
		return nil, fmt.Errorf("reconcile: create charge: %w", err)
	}
	e.observeExternal(peerGateway, "create_charge", "success", time.Since(extStart).Seconds())

	t := &transaction.Transaction{
		FormID:     formID,
		PaymentID:  charge.ID,
		PaymentURL: charge.ConfirmationURL,
		SecretKey:  secret,
		Status:     transaction.StatusPending,
	}
	if err := e.txs.Create(ctx, t); err != nil {
		if errors.Is(err, transaction.ErrDuplicatePending) {
			// Lost the insert race; the winner's charge is the one to use.
			winner, lookupErr := e.txs.FindPendingByForm(ctx, formID)
			if lookupErr == nil {
				statusText = "DUPLICATE_PENDING_RECOVERED"
				span.AddEvent("payment.duplicate_pending_recovered")
				return &PaymentHandle{PaymentID: winner.PaymentID, PaymentURL: winner.PaymentURL}, nil
			}
			outcome, statusText = "error", "DUPLICATE_PENDING_LOOKUP_FAILED"
			return nil, fmt.Errorf("reconcile: duplicate pending lookup: %w", lookupErr)
		}
		outcome, statusText = "error", "TRANSACTION_INSERT_FAILED"
		return nil, fmt.Errorf("reconcile: insert transaction: %w", err)
	}

	span.SetAttributes(
		attribute.String("payment.id", charge.ID),
		attribute.String("amount", total.Decimal()),
	)
	return &PaymentHandle{PaymentID: charge.ID, PaymentURL: charge.ConfirmationURL}, nil
}

func (e *Engine) resolveExisting(ctx context.Context, existing *transaction.Transaction) (*PaymentHandle, error) {
	extStart := time.Now()
	charge, err := e.gateway.FindCharge(ctx, existing.PaymentID)
	if err != nil {
		e.observeExternal(peerGateway, "find_charge", "error", time.Since(extStart).Seconds())
		return nil, fmt.Errorf("reconcile: find charge: %w", err)
	}
	e.observeExternal(peerGateway, "find_charge", "success", time.Since(extStart).Seconds())

	url := charge.ConfirmationURL
	if url == "" {
		url = existing.PaymentURL
	}
	return &PaymentHandle{PaymentID: existing.PaymentID, PaymentURL: url}, nil
}

// formTotal computes the charge amount and applies the early availability
// guard. The guard is advisory; the authoritative check happens in the
// ledger at reduce time.
func (e *Engine) formTotal(ctx context.Context, f *form.OrderForm) (catalog.Money, error) {
	var total catalog.Money
	for _, it := range f.LineItems {
		product, err := e.products.FindByID(ctx, it.ProductID)
		if err != nil {
			return catalog.Money{}, fmt.Errorf("reconcile: load product %d: %w", it.ProductID, err)
		}
		if it.Quantity > product.Quantity {
			return catalog.Money{}, fmt.Errorf("%w: product %d", ledger.ErrInsufficientStock, it.ProductID)
		}
		total = total.Add(product.Price().Mul(it.Quantity))
	}
	return total, nil
}
