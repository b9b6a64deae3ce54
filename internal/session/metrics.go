package session

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts backend traffic and token refreshes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
}

// NewMetrics registers the session collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "backend_requests_total",
			Help:      "Backend requests by route class and response status (0 when unreachable).",
		}, []string{"class", "status"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "token_refresh_total",
			Help:      "Token refresh calls by result.",
		}, []string{"result"}),
		queued: f.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "token_refresh_waiters_total",
			Help:      "Requests that waited on an in-flight refresh instead of starting one.",
		}),
	}
}

func (m *Metrics) observeRequest(class RouteClass, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(class.String(), strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeRefresh(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeWaiter() {
	if m == nil {
		return
	}
	m.queued.Inc()
}
