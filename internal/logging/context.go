package logging

import (
	"context"
	"log/slog"

	"bagger/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldNodeID is the standardized structured logging key for Drupal node IDs.
	FieldNodeID = "node_id"
	// FieldPlugin is the standardized structured logging key for bag plugin names.
	FieldPlugin = "plugin"
	// FieldCorrelationID is the standardized structured logging key for run identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what a warning means for the bag being built.
	FieldImpact = "impact"
	// FieldDecisionType names the kind of decision a log line records.
	FieldDecisionType = "decision_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.NodeIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldNodeID, id))
	}
	if plugin, ok := services.PluginFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlugin, plugin))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
