package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"justwatcharr/internal/reconcile"
	"justwatcharr/internal/runner"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[radarr]
url = "http://localhost:7878"
api_key = "test"

[justwatch]
providers = ["Netflix"]

[paths]
log_dir = %q
`, filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, err = runCLI(t, []string{"config", "init", "--path", target})
	if err == nil {
		t.Fatalf("expected error for existing file, got output %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	base := t.TempDir()
	path := writeTestConfig(t, base)

	out, err := runCLI(t, []string{"--config", path, "config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Netflix")
	requireContains(t, out, "jw-exclude")
	// Secrets never reach the terminal.
	if strings.Contains(out, "api_key") {
		t.Fatalf("output leaked raw key material: %q", out)
	}
}

func TestTestNotifyWithoutDiscordConfigured(t *testing.T) {
	base := t.TempDir()
	path := writeTestConfig(t, base)

	out, err := runCLI(t, []string{"--config", path, "test-notify"})
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "not configured")
}

func TestRenderSummary(t *testing.T) {
	summary := &runner.Summary{
		RunID: "run-1",
		Libraries: []reconcile.Stats{
			{Kind: "movie", Checked: 10, Skipped: 2, Demoted: 1, Promoted: 3},
			{Kind: "series", Checked: 5, Errors: 1},
		},
	}

	var buf bytes.Buffer
	out := renderSummary(&buf, summary)
	requireContains(t, out, "movie")
	requireContains(t, out, "series")
	requireContains(t, out, "total")
	requireContains(t, out, "Demoted")
}

func TestRenderTableUsesPlainStyleOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"Library"}, [][]string{{"movie"}}, nil)
	if strings.ContainsRune(out, '╭') {
		t.Fatalf("output %q uses terminal styling on a non-terminal writer", out)
	}
	requireContains(t, out, "movie")
}

func TestRedact(t *testing.T) {
	if got := redact(""); got != "(unset)" {
		t.Errorf("redact empty = %q", got)
	}
	if got := redact("secret"); strings.Contains(got, "secret") {
		t.Errorf("redact leaked secret: %q", got)
	}
}
