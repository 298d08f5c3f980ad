// Package metrics provides Prometheus instrumentation for the API's
// domain events. Exposed on /metrics via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's domain counters. All methods are nil-safe so
// callers never need to guard on a disabled metrics pipeline.
type Metrics struct {
	// Gate outcomes by workspace and result (allow / redirect)
	GateDecisions *prometheus.CounterVec

	// Distribution mark writes by outcome (marked / unmarked / denied)
	DistributionMarks *prometheus.CounterVec

	// Issues created by origin (community / staff)
	IssuesCreated *prometheus.CounterVec

	// Sessions minted by principal kind
	SessionsCreated *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		GateDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "khidmat_gate_decisions_total",
			Help: "Workspace gate outcomes by workspace and result",
		}, []string{"workspace", "result"}),

		DistributionMarks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "khidmat_distribution_marks_total",
			Help: "Aid distribution mark mutations by outcome",
		}, []string{"outcome"}),

		IssuesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "khidmat_issues_created_total",
			Help: "Issues filed by reporter origin",
		}, []string{"origin"}),

		SessionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "khidmat_sessions_created_total",
			Help: "Sessions minted by principal kind",
		}, []string{"kind"}),
	}
}

// IncGateDecision records a workspace gate outcome
func (m *Metrics) IncGateDecision(workspace, result string) {
	if m != nil {
		m.GateDecisions.WithLabelValues(workspace, result).Inc()
	}
}

// IncDistributionMark records a mark mutation outcome
func (m *Metrics) IncDistributionMark(outcome string) {
	if m != nil {
		m.DistributionMarks.WithLabelValues(outcome).Inc()
	}
}

// IncIssueCreated records a filed issue by origin
func (m *Metrics) IncIssueCreated(origin string) {
	if m != nil {
		m.IssuesCreated.WithLabelValues(origin).Inc()
	}
}

// IncSessionCreated records a minted session
func (m *Metrics) IncSessionCreated(kind string) {
	if m != nil {
		m.SessionsCreated.WithLabelValues(kind).Inc()
	}
}
