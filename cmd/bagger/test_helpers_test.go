package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"bagger/internal/config"
	"bagger/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *testsupport.DrupalServer
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DRUPAL_BASE_URL", "")
	t.Setenv("DRUPAL_TOKEN", "")

	server := testsupport.NewDrupalServer(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithDrupal(server),
		testsupport.WithMediaUseList(),
	)
	cfg.Drupal.Token = "cli-token"
	return &cliTestEnv{
		cfg:        cfg,
		server:     server,
		configPath: testsupport.WriteConfigFile(t, cfg),
	}
}

func (e *cliTestEnv) seedNode(t *testing.T, nodeID string) {
	t.Helper()
	e.server.JSON(t, "/node/"+nodeID, map[string]any{
		"nid":  []map[string]any{{"value": nodeID}},
		"uuid": []map[string]any{{"value": "0b5a7c1e-9a0d-4c55-8f1e-2c3d4e5f6a7b"}},
	})
	e.server.JSON(t, "/node/"+nodeID+"/media", []any{map[string]any{
		"field_media_use":      []map[string]any{{"url": "/taxonomy/term/17"}},
		"field_media_document": []map[string]any{{"target_id": 9, "url": e.server.URL + "/sites/default/files/minutes.pdf"}},
	}})
	e.server.File("/sites/default/files/minutes.pdf", []byte("%PDF-1.4\n%minutes\n"))
	e.server.JSON(t, "/taxonomy/term/17", map[string]any{
		"field_external_uri": []map[string]any{{"uri": "http://pcdm.org/use#PreservationMasterFile"}},
	})
}

func (e *cliTestEnv) bagDir(name string) string {
	return filepath.Join(e.cfg.Paths.OutputDir, name)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
