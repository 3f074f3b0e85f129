package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveAddress("numbered_street", OutcomeFormatted)
	m.ObserveAddress("numbered_street", OutcomeFormatted)
	m.ObserveAddress("annotated_place", OutcomeMismatch)
	m.ObserveResolution("geocoder")
	m.ObserveLookupFailure("commune", "empty")
	m.ObserveLookup("geocoder", 15*time.Millisecond)
	m.ObserveBatch(3, time.Second)
	m.ObserveHTTPRequest("POST", "/api/v1/records/normalize", 200, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AddressesTotal.WithLabelValues("numbered_street", OutcomeFormatted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AddressesTotal.WithLabelValues("annotated_place", OutcomeMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("geocoder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupFailuresTotal.WithLabelValues("commune", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupRequestsTotal.WithLabelValues("geocoder")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BatchRowsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/records/normalize", "200")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAddress("bare_place", OutcomeFormatted)
		m.ObserveBirthplace(OutcomeMissing)
		m.ObserveResolution("unresolved")
		m.ObserveLookup("commune", time.Millisecond)
		m.ObserveLookupFailure("commune", "status")
		m.ObserveBatch(1, time.Millisecond)
		m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
	})
}
