package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bagger/internal/bag"
	"bagger/internal/services"
	"bagger/internal/testsupport"
)

func TestCreateInspectAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedNode(t, "77")

	out, _, err := runCLI(t, []string{"create", "--node", "77"}, env.configPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireContains(t, out, "Bag created: "+env.bagDir("77"))
	requireContains(t, out, "Payload: 2 files")

	var sawToken bool
	for _, req := range env.server.Requests() {
		if req.Path == "/node/77/media" && req.Authorization == "Bearer cli-token" {
			sawToken = true
		}
	}
	if !sawToken {
		t.Fatal("expected configured token on media request")
	}

	out, _, err = runCLI(t, []string{"inspect", env.bagDir("77")}, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "minutes.pdf")
	requireContains(t, out, "media_use_summary.tsv")
	requireContains(t, out, "Payload-Oxum")
	requireContains(t, out, "Bag valid")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "77")

	out, _, err = runCLI(t, []string{"history", "--node", "12"}, env.configPath)
	if err != nil {
		t.Fatalf("history --node: %v", err)
	}
	requireContains(t, out, "No bag runs recorded")
}

func TestCreateRequiresNode(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"create"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without --node")
	}
	if code := services.ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d (%v)", code, err)
	}
}

func TestCreateMalformedMediaListExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedNode(t, "78")
	env.server.JSON(t, "/node/78/media", map[string]any{"message": "not a list"})

	_, _, err := runCLI(t, []string{"create", "--node", "78"}, env.configPath)
	if !errors.Is(err, services.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if code := services.ExitCode(err); code != 4 {
		t.Fatalf("expected exit code 4, got %d", code)
	}
}

func TestAttachMediaToExistingBag(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedNode(t, "79")

	bagDir := filepath.Join(testsupport.BaseDir(env.cfg), "existing")
	b, err := bag.Create(bagDir, bag.Options{})
	if err != nil {
		t.Fatalf("bag.Create: %v", err)
	}
	src := filepath.Join(testsupport.BaseDir(env.cfg), "notes.txt")
	testsupport.WriteFile(t, src, []byte("field notes\n"))
	if err := b.AddFile(src, "notes.txt"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	staging := filepath.Join(testsupport.BaseDir(env.cfg), "downloads")
	out, _, err := runCLI(t, []string{"attach-media", "--node", "79", "--bag", bagDir, "--staging", staging}, env.configPath)
	if err != nil {
		t.Fatalf("attach-media: %v", err)
	}
	requireContains(t, out, "3 payload files")

	if _, err := os.Stat(filepath.Join(staging, "minutes.pdf")); err != nil {
		t.Fatalf("expected download in staging: %v", err)
	}
	reopened, err := bag.Open(bagDir)
	if err != nil {
		t.Fatalf("bag.Open: %v", err)
	}
	if err := reopened.Validate(); err != nil {
		t.Fatalf("Validate after attach: %v", err)
	}
	if !reopened.Has("minutes.pdf") || !reopened.Has("media_use_summary.tsv") {
		t.Fatalf("unexpected payload %v", reopened.Files())
	}
}

func TestAttachMediaDefaultStagingStaysUnderRoot(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedNode(t, "../79")

	bagDir := filepath.Join(testsupport.BaseDir(env.cfg), "existing")
	if _, err := bag.Create(bagDir, bag.Options{}); err != nil {
		t.Fatalf("bag.Create: %v", err)
	}

	if _, _, err := runCLI(t, []string{"attach-media", "--node", "../79", "--bag", bagDir}, env.configPath); err != nil {
		t.Fatalf("attach-media: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StagingDir, "_79", "minutes.pdf")); err != nil {
		t.Fatalf("expected download under sanitized staging dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(env.cfg.Paths.StagingDir), "79")); !os.IsNotExist(err) {
		t.Fatalf("staging escaped its root: %v", err)
	}
}

func TestAttachMediaRequiresFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"attach-media", "--node", "79"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInspectReportsTamperedBag(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedNode(t, "80")
	if _, _, err := runCLI(t, []string{"create", "--node", "80"}, env.configPath); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.bagDir("80"), "data", "minutes.pdf"), []byte("changed"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	out, _, err := runCLI(t, []string{"inspect", env.bagDir("80")}, "")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, out, "Bag invalid")
	if code := services.ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Staging directory:")
	requireContains(t, out, "Drupal:")
	requireContains(t, out, "[OK]")

	env.server.Raw("/user/login_status", 403, "application/json", []byte(`{"message":"denied"}`))
	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err == nil {
		t.Fatal("expected status failure when token is rejected")
	}
	requireContains(t, out, "auth failed: 403")
}

func TestStagingListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"staging", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("staging list: %v", err)
	}
	requireContains(t, out, "Staging is empty")

	leftover := filepath.Join(env.cfg.Paths.StagingDir, "81")
	testsupport.WriteFile(t, filepath.Join(leftover, "scan.tif"), []byte("tiff"))

	out, _, err = runCLI(t, []string{"staging", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("staging list: %v", err)
	}
	requireContains(t, out, "81")

	out, _, err = runCLI(t, []string{"staging", "clean", "--older-than", "0s"}, env.configPath)
	if err != nil {
		t.Fatalf("staging clean: %v", err)
	}
	requireContains(t, out, "Removed 1 staging directories")
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", leftover)
	}
}
