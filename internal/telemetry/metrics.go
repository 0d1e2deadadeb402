package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tournevent/emc/pkg/envoimoinscher"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PartnerErrors   *prometheus.CounterVec
	OffersReturned  prometheus.Histogram
}

// NewMetrics creates the service metrics and registers them with reg. A
// nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emc_requests_total",
				Help: "Total number of requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emc_request_duration_seconds",
				Help:    "Request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		PartnerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emc_partner_errors_total",
				Help: "Total EnvoiMoinsCher errors by operation and error type",
			},
			[]string{"operation", "error_type"},
		),
		OffersReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "emc_offers_returned",
				Help:    "Number of offers returned per quotation",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records a partner error metric, classified by ErrorType.
func (m *Metrics) RecordError(operation string, err error) {
	m.PartnerErrors.WithLabelValues(operation, ErrorType(err)).Inc()
}

// RecordOffers records the size of a quotation result.
func (m *Metrics) RecordOffers(n int) {
	m.OffersReturned.Observe(float64(n))
}

// ErrorType returns a low-cardinality label for err.
func ErrorType(err error) string {
	var apiErr *envoimoinscher.APIError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, envoimoinscher.ErrAuthenticationFailed):
		return "authentication"
	case errors.Is(err, envoimoinscher.ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, envoimoinscher.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, envoimoinscher.ErrInvalidPerson),
		errors.Is(err, envoimoinscher.ErrInvalidPackage),
		errors.Is(err, envoimoinscher.ErrUnknownPalletCode),
		errors.Is(err, envoimoinscher.ErrUnknownReason),
		errors.Is(err, envoimoinscher.ErrNoOrderInfo):
		return "invalid_input"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "internal"
	}
}
