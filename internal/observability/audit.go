package observability

import (
	"context"
	"log/slog"

	"github.com/powerviz/plant-data-api/internal/domain"
)

// LogAuditSink writes audit events to the process logger. It is the always-on
// audit trail; an optional Kafka sink can be layered on top via MultiSink.
type LogAuditSink struct {
	logger *slog.Logger
}

// NewLogAuditSink creates a sink logging under the "audit" component.
func NewLogAuditSink(logger *slog.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger.With("component", "audit")}
}

func (s *LogAuditSink) Record(_ context.Context, event domain.AuditEvent) error {
	s.logger.Info("audit event",
		"audit_id", event.ID,
		"user", event.UserID,
		"action", event.Action,
		"resource", event.Resource,
		"status", event.Status,
		"details", event.Details,
	)
	return nil
}

// MultiSink fans an audit event out to every sink. Sink failures are counted
// and logged, never propagated; losing an audit event must not fail the
// request that produced it.
type MultiSink struct {
	sinks   []named
	logger  *slog.Logger
	metrics *Metrics
}

type named struct {
	name string
	sink domain.AuditSink
}

// NewMultiSink composes audit sinks. Names label the audit metrics.
func NewMultiSink(logger *slog.Logger, metrics *Metrics) *MultiSink {
	return &MultiSink{logger: logger, metrics: metrics}
}

// Add registers a sink under a metric label.
func (m *MultiSink) Add(name string, sink domain.AuditSink) {
	m.sinks = append(m.sinks, named{name: name, sink: sink})
}

func (m *MultiSink) Record(ctx context.Context, event domain.AuditEvent) error {
	for _, s := range m.sinks {
		if err := s.sink.Record(ctx, event); err != nil {
			m.metrics.AuditPublished.WithLabelValues(s.name, "error").Inc()
			m.logger.Warn("audit sink failed", "sink", s.name, "error", err)
			continue
		}
		m.metrics.AuditPublished.WithLabelValues(s.name, "success").Inc()
	}
	return nil
}
