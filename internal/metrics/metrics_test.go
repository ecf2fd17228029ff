package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.EmailsSent.WithLabelValues("daily-summary").Add(2)
	m.SendFailures.WithLabelValues("daily-summary", "auth_error").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("daily-summary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures.WithLabelValues("daily-summary", "auth_error")))

	// A second registry accepts the same metric names
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}
