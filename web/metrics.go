// ABOUTME: Prometheus metrics for the web dashboard and SMS side-channel
// ABOUTME: Each server owns its registry and exposes it on /metrics
package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
)

// Metrics provides observability for the web dashboard and notification side-channel.
// Each instance owns its registry so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	PolicyMutations *prometheus.CounterVec
	SMSMessages     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all metrics. Policy gauges read the store at scrape time.
func NewMetrics(s *store.Store) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		PolicyMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insuretrack_policy_mutations_total",
			Help: "Policy mutations accepted through the web API, by operation",
		}, []string{"op"}),
		SMSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insuretrack_sms_messages_total",
			Help: "SMS send attempts by message type and outcome",
		}, []string{"type", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insuretrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method"}),
	}

	if s != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "insuretrack_policies",
			Help: "Number of stored policies",
		}, func() float64 { return float64(s.Len()) })
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "insuretrack_renewals_due_soon",
			Help: "Policies renewing within the alert window",
		}, func() float64 { return float64(len(s.RenewalAlerts())) })
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "insuretrack_premium_yearly_total",
			Help: "Annualised premium across all policies",
		}, func() float64 { return s.Stats().YearlyPremiumTotal })
	}
	return m
}

// ObserveSMS counts one send attempt. Its signature matches notify.WithResultHook.
func (m *Metrics) ObserveSMS(msgType models.MessageType, status models.SMSStatus) {
	m.SMSMessages.WithLabelValues(string(msgType), string(status)).Inc()
}

// IncrementMutation records a successful create, update, delete, import or clear.
func (m *Metrics) IncrementMutation(op string) {
	m.PolicyMutations.WithLabelValues(op).Inc()
}

// ObserveRequest records the duration of a request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(route, method string, start time.Time) {
	m.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
