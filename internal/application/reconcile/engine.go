package reconcile

import (
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/form"
	"storefront/internal/domain/ledger"
	"storefront/internal/domain/notify"
	domoutbox "storefront/internal/domain/outbox"
	"storefront/internal/domain/payment"
	"storefront/internal/domain/transaction"
	"storefront/internal/observability"
)

const (
	engineService = "reconcile-engine"
	spanPrefix    = "UC."

	peerGateway  = "gateway"
	peerNotifier = "notifier"

	publishTimeout = 300 * time.Millisecond
)

// Engine drives the transaction/inventory state machine: it opens charges
// against the gateway, applies reported gateway statuses, and moves stock
// through the ledger. It holds explicit references to its collaborators;
// there is no ambient database handle.
type Engine struct {
	forms     form.Repository
	products  catalog.Repository
	txs       transaction.Repository
	ledger    ledger.Ledger
	gateway   payment.Gateway
	notifier  notify.Notifier
	publisher domoutbox.Publisher
	tel       observability.Telemetry
	returnURL string

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// New wires the engine's collaborators. tel may be nil; the engine then runs
// with nop telemetry.
func New(
	forms form.Repository,
	products catalog.Repository,
	txs transaction.Repository,
	ldg ledger.Ledger,
	gw payment.Gateway,
	ntf notify.Notifier,
	publisher domoutbox.Publisher,
	tel observability.Telemetry,
	returnURL string,
) *Engine {
	if tel == nil {
		tel = observability.NopTelemetry()
	}

	return &Engine{
		forms:     forms,
		products:  products,
		txs:       txs,
		ledger:    ldg,
		gateway:   gw,
		notifier:  ntf,
		publisher: publisher,
		tel:       tel,
		returnURL: returnURL,

		log:          tel.Logger().With(observability.F("service", engineService)),
		reqCounter:   tel.Counter(observability.MUsecaseRequests),
		durHistogram: tel.Histogram(observability.MUsecaseDuration),
		extCounter:   tel.Counter(observability.MExternalRequests),
		extHistogram: tel.Histogram(observability.MExternalRequestDuration),
	}
}

// PaymentHandle is what the caller needs to send the customer to the gateway.
type PaymentHandle struct {
	PaymentID  string
	PaymentURL string
}

func (e *Engine) observe(useCase, outcome string, latencySeconds float64) {
	if e.reqCounter != nil {
		e.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
	if e.durHistogram != nil {
		e.durHistogram.Observe(latencySeconds,
			observability.L("use_case", useCase),
		)
	}
}

func (e *Engine) observeExternal(peer, endpoint, outcome string, latencySeconds float64) {
	if e.extCounter != nil {
		e.extCounter.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if e.extHistogram != nil {
		e.extHistogram.Observe(latencySeconds,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
}

func ledgerItems(items []form.LineItem) []ledger.Item {
	out := make([]ledger.Item, 0, len(items))
	for _, it := range items {
		out = append(out, ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
