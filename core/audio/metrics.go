package audio

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow outcomes.
const (
	OutcomeCreated       = "created"
	OutcomeRejected      = "rejected"
	OutcomeFailed        = "failed"
	OutcomeCleanupFailed = "cleanup_failed"
	OutcomeDeleted       = "deleted"
)

// Metrics counts upload workflow outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the outcome counter on reg, reusing an existing one.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "audiochan"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audio",
		Name:      "workflow_outcomes_total",
		Help:      "Outcomes of the audio upload and lifecycle workflow.",
	}, []string{"outcome"})
	if err := reg.Register(outcomes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register audio metrics: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register audio metrics: %w", err)
		}
		outcomes = existing
	}
	return &Metrics{outcomes: outcomes}, nil
}

func (m *Metrics) record(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}
