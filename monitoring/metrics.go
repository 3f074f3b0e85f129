package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки outcome
const (
	OutcomeFormatted = "formatted"
	OutcomeMismatch  = "mismatch"
	OutcomeMissing   = "missing"
)

// Metrics собирает метрики форматирования и разрешения кодов.
// Все методы допускают nil-получатель, тогда метрики не пишутся.
type Metrics struct {
	AddressesTotal       *prometheus.CounterVec
	BirthplacesTotal     *prometheus.CounterVec
	ResolutionsTotal     *prometheus.CounterVec
	LookupRequestsTotal  *prometheus.CounterVec
	LookupFailuresTotal  *prometheus.CounterVec
	LookupDuration       *prometheus.HistogramVec
	BatchRowsTotal       prometheus.Counter
	BatchDurationSeconds prometheus.Histogram
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AddressesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_addresses_total",
			Help: "Addresses processed by grammar and outcome",
		}, []string{"grammar", "outcome"}),
		BirthplacesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_birthplaces_total",
			Help: "Birth places processed by outcome",
		}, []string{"outcome"}),
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_resolutions_total",
			Help: "Locality code resolutions by source (tier name, cache or unresolved)",
		}, []string{"source"}),
		LookupRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_lookup_requests_total",
			Help: "Requests sent to lookup tiers",
		}, []string{"tier"}),
		LookupFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_lookup_failures_total",
			Help: "Lookup misses by tier and reason",
		}, []string{"tier", "reason"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recordformatter_lookup_duration_seconds",
			Help:    "Duration of lookup tier requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"tier"}),
		BatchRowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recordformatter_batch_rows_total",
			Help: "Rows processed by batch runs",
		}),
		BatchDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recordformatter_batch_duration_seconds",
			Help:    "Duration of batch runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordformatter_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recordformatter_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveAddress учитывает результат разбора адреса
func (m *Metrics) ObserveAddress(grammar, outcome string) {
	if m == nil {
		return
	}
	m.AddressesTotal.WithLabelValues(grammar, outcome).Inc()
}

// ObserveBirthplace учитывает результат форматирования места рождения
func (m *Metrics) ObserveBirthplace(outcome string) {
	if m == nil {
		return
	}
	m.BirthplacesTotal.WithLabelValues(outcome).Inc()
}

// ObserveResolution учитывает итог разрешения кода
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(source).Inc()
}

// ObserveLookup учитывает запрос к уровню поиска
func (m *Metrics) ObserveLookup(tier string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LookupRequestsTotal.WithLabelValues(tier).Inc()
	m.LookupDuration.WithLabelValues(tier).Observe(duration.Seconds())
}

// ObserveLookupFailure учитывает промах уровня поиска
func (m *Metrics) ObserveLookupFailure(tier, reason string) {
	if m == nil {
		return
	}
	m.LookupFailuresTotal.WithLabelValues(tier, reason).Inc()
}

// ObserveBatch учитывает завершенный пакет
func (m *Metrics) ObserveBatch(rows int, duration time.Duration) {
	if m == nil {
		return
	}
	m.BatchRowsTotal.Add(float64(rows))
	m.BatchDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest учитывает обработанный HTTP-запрос. route - шаблон маршрута, а не путь.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
