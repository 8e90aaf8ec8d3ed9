package services

import "context"

type contextKey string

const (
	nodeIDKey    contextKey = "node_id"
	pluginKey    contextKey = "plugin"
	requestIDKey contextKey = "request_id"
)

// WithNodeID annotates context with the Drupal node identifier being bagged.
func WithNodeID(ctx context.Context, nodeID string) context.Context {
	if nodeID == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeIDKey, nodeID)
}

// NodeIDFromContext extracts the node identifier if present.
func NodeIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(nodeIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPlugin annotates context with the name of the running bag plugin.
func WithPlugin(ctx context.Context, plugin string) context.Context {
	if plugin == "" {
		return ctx
	}
	return context.WithValue(ctx, pluginKey, plugin)
}

// PluginFromContext returns the plugin name if present.
func PluginFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(pluginKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
