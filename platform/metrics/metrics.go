// Package metrics exposes Prometheus collectors for the lead workflow.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "leaddesk"

// WorkflowMetrics counts lead intake, decisions, notifications and limiter denials.
type WorkflowMetrics struct {
	leadsCreated     *prometheus.CounterVec
	stageTransitions *prometheus.CounterVec
	decisions        *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	notifyLatency    *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
}

// NewWorkflowMetrics registers the collectors on reg, or the default registerer when nil.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Leads accepted by the public intake endpoint",
		}, []string{"setup_type"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "stage_transitions_total",
			Help:      "Stage changes applied to a lead track",
		}, []string{"track", "to"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decisions",
			Name:      "recorded_total",
			Help:      "Prospect decisions by outcome, including replays",
		}, []string{"track", "decision", "already_decided"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Outbound notification attempts by result",
		}, []string{"kind", "status"}),
		notifyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "delivery_seconds",
			Help:      "Time spent delivering one notification",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsCreated, m.stageTransitions, m.decisions, m.notifications, m.notifyLatency, m.rateLimited)
	return m
}

func (m *WorkflowMetrics) ObserveLeadCreated(setupType string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(setupType).Inc()
}

func (m *WorkflowMetrics) ObserveStageTransition(track, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(track, to).Inc()
}

func (m *WorkflowMetrics) ObserveDecision(track, decision string, alreadyDecided bool) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(track, decision, strconv.FormatBool(alreadyDecided)).Inc()
}

// ObserveNotification records one delivery attempt. status is sent, failed, timeout or skipped.
func (m *WorkflowMetrics) ObserveNotification(kind, status string, seconds float64) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
	m.notifyLatency.WithLabelValues(kind).Observe(seconds)
}

func (m *WorkflowMetrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
