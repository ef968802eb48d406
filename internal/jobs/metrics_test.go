package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	assert.NoError(t, metrics.Track("mail").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, metrics.Track("mail").End(boom), boom)
	metrics.MailSent("role_changed")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("mail", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("mail", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("mail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mails.WithLabelValues("role_changed")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.MailSent("x")
	assert.NoError(t, metrics.Track("x").End(nil))
}
