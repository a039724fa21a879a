// Package metrics exposes Prometheus counters for the decision layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecompositionsTotal counts successful decompositions by strategy.
	DecompositionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "decompositions_total",
		Help:      "Decompositions performed, by strategy.",
	}, []string{"strategy"})

	// OverridesTotal counts guarded-pipeline verdict overrides by role.
	OverridesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "response_overrides_total",
		Help:      "Responses whose stated verdict was overridden, by role.",
	}, []string{"role"})

	// EscalationsTotal counts forced escalations by cause.
	EscalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "escalations_total",
		Help:      "Forced escalations, by cause.",
	}, []string{"cause"})

	// HealthIssuesTotal counts detected health issues by severity.
	HealthIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "health_issues_total",
		Help:      "Health issues detected, by severity.",
	}, []string{"severity"})

	// ModelCallsTotal counts outbound model calls by caller.
	ModelCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "model_calls_total",
		Help:      "Model calls made, by caller.",
	}, []string{"caller"})
)
