package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bagger/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDrupal(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.Header.Get("Authorization") {
		case "Bearer bad":
			w.WriteHeader(http.StatusForbidden)
		default:
			_, _ = w.Write([]byte("1"))
		}
	}))
	defer srv.Close()

	ok := CheckDrupal(context.Background(), config.Drupal{BaseURL: srv.URL + "/", Token: "good", VerifyCA: true})
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}
	if gotAuth != "Bearer good" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}

	denied := CheckDrupal(context.Background(), config.Drupal{BaseURL: srv.URL, Token: "bad", VerifyCA: true})
	if denied.Passed || !strings.Contains(denied.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got %+v", denied)
	}

	missing := CheckDrupal(context.Background(), config.Drupal{})
	if missing.Passed || missing.Detail != "missing base url" {
		t.Fatalf("unexpected result for empty url: %+v", missing)
	}
}

func TestCheckDrupalUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	if result := CheckDrupal(context.Background(), config.Drupal{BaseURL: base}); result.Passed {
		t.Fatal("expected failure for closed server")
	}
}

func TestRunAllCoversDirectoriesAndDrupal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Drupal.BaseURL = srv.URL
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected four checks, got %d", len(results))
	}
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
