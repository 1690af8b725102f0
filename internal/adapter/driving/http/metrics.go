package httphandler

import (
	gh "github.com/google/go-github/v82/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event label values for deliveries without a usable X-GitHub-Event header.
const (
	eventLabelNone  = "none"
	eventLabelOther = "other"
)

// Metrics holds the receiver's Prometheus collectors.
type Metrics struct {
	received    *prometheus.CounterVec
	rejected    prometheus.Counter
	knownEvents map[string]struct{}
}

// NewMetrics registers the receiver collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	known := make(map[string]struct{})
	for _, t := range gh.MessageTypes() {
		known[t] = struct{}{}
	}

	return &Metrics{
		received: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hookrecv_webhooks_received_total",
			Help: "Webhook deliveries accepted, by X-GitHub-Event value. Unknown event types are counted as \"other\".",
		}, []string{"event"}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "hookrecv_webhooks_rejected_total",
			Help: "Webhook deliveries rejected because the body was not valid JSON.",
		}),
		knownEvents: known,
	}
}

// observeReceived counts one accepted delivery. The header is client-controlled,
// so only GitHub event types and registered handler keys become label values.
func (m *Metrics) observeReceived(event string, registered bool) {
	m.received.WithLabelValues(m.eventLabel(event, registered)).Inc()
}

func (m *Metrics) eventLabel(event string, registered bool) string {
	if event == "" {
		return eventLabelNone
	}
	if registered {
		return event
	}
	if _, ok := m.knownEvents[event]; ok {
		return event
	}
	return eventLabelOther
}

func (m *Metrics) observeRejected() {
	m.rejected.Inc()
}
