package services_test

import (
	"context"
	"testing"

	"bagger/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithNodeID(ctx, "42")
	ctx = services.WithPlugin(ctx, "AddMedia")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.NodeIDFromContext(ctx); !ok || id != "42" {
		t.Fatalf("unexpected node id: %v %v", id, ok)
	}
	if plugin, ok := services.PluginFromContext(ctx); !ok || plugin != "AddMedia" {
		t.Fatalf("unexpected plugin: %v %v", plugin, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestPluginBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPlugin(ctx, "")
	if _, ok := services.PluginFromContext(ctx); ok {
		t.Fatal("expected no plugin value")
	}
}
