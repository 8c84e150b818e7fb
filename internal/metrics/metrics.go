package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	Registry *prometheus.Registry

	QuotesGenerated  prometheus.Counter
	QuotesRefused    *prometheus.CounterVec
	RatingFactorMiss *prometheus.CounterVec
	PaymentEvents    *prometheus.CounterVec
	DocumentOutcome  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		QuotesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripshield_quotes_generated_total",
			Help: "Quotes successfully priced and persisted.",
		}),
		QuotesRefused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripshield_quotes_refused_total",
			Help: "Quote requests refused before pricing.",
		}, []string{"reason"}),
		RatingFactorMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripshield_rating_factor_miss_total",
			Help: "Rating factor lookups that degraded to a zero rate.",
		}, []string{"table"}),
		PaymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripshield_payment_events_total",
			Help: "Payment confirmation events by outcome.",
		}, []string{"outcome"}),
		DocumentOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripshield_document_dispatch_total",
			Help: "Membership document render and dispatch attempts by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.QuotesGenerated,
		m.QuotesRefused,
		m.RatingFactorMiss,
		m.PaymentEvents,
		m.DocumentOutcome,
	)
	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
