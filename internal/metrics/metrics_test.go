package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveRedemption(OutcomeRedeemed, 10*time.Millisecond)
	m.ObserveRedemption(OutcomeAlreadyRedeemed, time.Millisecond)
	m.ObserveRedemption(OutcomeAlreadyRedeemed, time.Millisecond)
	m.TicketGenerated()
	m.CodeCollision()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues(OutcomeRedeemed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.redemptions.WithLabelValues(OutcomeAlreadyRedeemed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collisions))
	assert.Equal(t, 2, testutil.CollectAndCount(m.redemptions))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	second.TicketGenerated()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.generated))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRedemption(OutcomeError, time.Second)
		m.TicketGenerated()
		m.CodeCollision()
	})
}
