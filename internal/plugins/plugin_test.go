package plugins_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bagger/internal/bag"
	"bagger/internal/logging"
	"bagger/internal/plugins"
	"bagger/internal/services"
	"bagger/internal/testsupport"
)

func TestBuildPreservesOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	built, err := plugins.Build([]string{"AddNodeJSON", "AddMedia"}, plugins.Dependencies{Config: cfg, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(built) != 2 || built[0].Name() != "AddNodeJSON" || built[1].Name() != "AddMedia" {
		t.Fatalf("unexpected plugins: %+v", built)
	}
}

func TestBuildRejectsUnknownPlugin(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := plugins.Build([]string{"AddFedoraTurtle"}, plugins.Dependencies{Config: cfg})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "AddMedia") {
		t.Fatalf("expected available plugins listed, got %v", err)
	}
}

func TestNodeJSONAddsIndentedDocument(t *testing.T) {
	b, err := bag.Create(filepath.Join(t.TempDir(), "bag"), bag.Options{})
	if err != nil {
		t.Fatalf("bag.Create: %v", err)
	}
	plugin := plugins.NewNodeJSON(logging.NewNop())
	staging := filepath.Join(t.TempDir(), "staging")

	if _, err := plugin.Execute(context.Background(), b, staging, "42", []byte(`{"nid":[{"value":42}]}`), ""); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(b.Dir(), "data", plugins.NodeJSONFilename))
	if err != nil {
		t.Fatalf("read node.json: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"nid\"") {
		t.Fatalf("expected indented json, got %q", data)
	}

	if _, err := plugin.Execute(context.Background(), b, staging, "42", []byte("  "), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty node json, got %v", err)
	}
}
