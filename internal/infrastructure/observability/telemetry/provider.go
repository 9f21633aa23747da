package telemetry

import (
	"storefront/internal/infrastructure/observability/prometrics"
	"storefront/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
)

type provider struct {
	tracer     observability.Tracer
	logger     observability.Logger
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

// New assembles a Telemetry provider backed by the supplied tracer, logger and
// prometheus registry, with the application's metric families pre-registered.
func New(tracer observability.Tracer, logger observability.Logger, reg prometrics.Registry) observability.Telemetry {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	p := &provider{
		tracer:     tracer,
		logger:     logger,
		counters:   make(map[observability.MetricKey]observability.Counter),
		histograms: make(map[observability.MetricKey]observability.Histogram),
	}

	if reg != nil {
		p.counters[observability.MUsecaseRequests] = reg.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		)
		p.counters[observability.MExternalRequests] = reg.Counter(
			string(observability.MExternalRequests),
			"Total number of calls to external collaborators.",
			"peer", "endpoint", "outcome",
		)
		p.counters[observability.MHTTPRequests] = reg.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests served.",
			"method", "route", "status",
		)
		p.counters[observability.MAuditEvents] = reg.Counter(
			string(observability.MAuditEvents),
			"Count of audited domain events.",
			"event",
		)
		p.histograms[observability.MUsecaseDuration] = reg.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		)
		p.histograms[observability.MExternalRequestDuration] = reg.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of external collaborator calls in seconds.",
			prometheus.DefBuckets,
			"peer", "endpoint",
		)
		p.histograms[observability.MHTTPRequestDuration] = reg.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP request handling in seconds.",
			prometheus.DefBuckets,
			"method", "route",
		)
	}

	return p
}

func (p *provider) Tracer() observability.Tracer { return p.tracer }

func (p *provider) Logger() observability.Logger { return p.logger }

func (p *provider) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := p.counters[name]; ok && c != nil {
		return c
	}
	return observability.NopCounter()
}

func (p *provider) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := p.histograms[name]; ok && h != nil {
		return h
	}
	return observability.NopHistogram()
}
