package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "luckyticket"

// Redemption outcomes used as the "outcome" label.
const (
	OutcomeRedeemed        = "redeemed"
	OutcomeAlreadyRedeemed = "already_redeemed"
	OutcomeNotFound        = "not_found"
	OutcomeInvalid         = "invalid"
	OutcomeCreditFailed    = "credit_failed"
	OutcomeError           = "error"
)

// Metrics exports ticket generation and redemption counters to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	redemptions    *prometheus.CounterVec
	redeemDuration prometheus.Histogram
	generated      prometheus.Counter
	collisions     prometheus.Counter
}

// New registers the collectors on reg (the default registerer when nil).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var err error
	m := &Metrics{}
	if m.redemptions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redemptions_total",
		Help:      "Redemption attempts by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if m.redeemDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "redeem_duration_seconds",
		Help:      "Latency of the claim and credit steps together.",
		Buckets:   prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if m.generated, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_generated_total",
		Help:      "Tickets inserted into the ledger.",
	})); err != nil {
		return nil, err
	}
	if m.collisions, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "code_collisions_total",
		Help:      "Generated codes rejected by the unique index and regenerated.",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already registered collector when an identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// ObserveRedemption records the outcome and latency of one redemption attempt.
func (m *Metrics) ObserveRedemption(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(outcome).Inc()
	m.redeemDuration.Observe(elapsed.Seconds())
}

// TicketGenerated counts one inserted ticket.
func (m *Metrics) TicketGenerated() {
	if m == nil {
		return
	}
	m.generated.Inc()
}

// CodeCollision counts one regenerated code.
func (m *Metrics) CodeCollision() {
	if m == nil {
		return
	}
	m.collisions.Inc()
}
