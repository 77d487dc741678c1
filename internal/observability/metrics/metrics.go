package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeInFlight = "in_flight"
)

// LeadMetrics exposes counters/histograms for the lead submission pipeline.
type LeadMetrics struct {
	submissions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	recordLatency *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onetriage",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead form submissions by outcome (success, invalid, failed, in_flight)",
		}, []string{"form_type", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onetriage",
			Subsystem: "leads",
			Name:      "notifications_total",
			Help:      "Best-effort lead notifications by result",
		}, []string{"form_type", "status"}),
		recordLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onetriage",
			Subsystem: "leads",
			Name:      "record_latency_seconds",
			Help:      "Latency of system-of-record writes",
			Buckets:   prometheus.DefBuckets,
		}, []string{"form_type", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.notifications, m.recordLatency)
	return m
}

func (m *LeadMetrics) ObserveSubmission(formType, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(formType, outcome).Inc()
}

func (m *LeadMetrics) ObserveNotification(formType string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.notifications.WithLabelValues(formType, status).Inc()
}

func (m *LeadMetrics) ObserveRecord(formType string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.recordLatency.WithLabelValues(formType, status).Observe(seconds)
}
