// Package metrics holds the stub service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	// Deliveries counts sends by primary channel and by the channel that
	// finally delivered.
	Deliveries *prometheus.CounterVec
	// MailboxOps counts inbox/trash mutations by action and result.
	MailboxOps *prometheus.CounterVec
}

// New registers a fresh set of collectors, plus the Go and process
// collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests."},
			[]string{"handler", "method", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"handler", "method"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "deliveries_total", Help: "Notifications sent."},
			[]string{"primary", "delivered_via"},
		),
		MailboxOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mailbox_operations_total", Help: "Inbox and trash mutations."},
			[]string{"action", "result"}, // result: ok | not_found | error
		),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration, m.Deliveries, m.MailboxOps,
	)
	return m
}
