package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
output_dir = %q
work_dir = %q
log_dir = %q
jobs_dir = %q

[tts]
engine = "command"
command = "fake-tts"

[jobs]
enabled = true
`,
		filepath.Join(base, "output"),
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "jobs"),
	)
	path := filepath.Join(base, "subdub.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestStrategiesCommandListsAll(t *testing.T) {
	out, err := execute(t, "strategies")
	if err != nil {
		t.Fatalf("strategies: %v", err)
	}
	for _, name := range []string{"basic", "stretch", "hq-stretch", "adaptive", "iterative"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %q in output:\n%s", name, out)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target path in output:\n%s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := execute(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := execute(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "fake-tts") {
		t.Fatalf("expected tts command in output:\n%s", out)
	}
	if !strings.Contains(out, "strategy = 'stretch'") && !strings.Contains(out, `strategy = "stretch"`) {
		t.Fatalf("expected default strategy in output:\n%s", out)
	}
}

func TestJobsCommandWithEmptyHistory(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := execute(t, "--config", cfgPath, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if !strings.Contains(out, "No dubbing runs recorded yet") {
		t.Fatalf("expected empty-history message, got:\n%s", out)
	}
}

func TestRunCommandRejectsUnknownStrategy(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := execute(t, "--config", cfgPath, "run", "missing.srt", "--strategy", "warp")
	if err == nil || !strings.Contains(err.Error(), "unknown strategy") {
		t.Fatalf("expected unknown strategy error, got %v", err)
	}
}

func TestExecuteContextReachesCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--config", cfgPath, "jobs"})

	// A cancelled execution context must surface from the command instead
	// of being swallowed by a background context.
	err := cmd.ExecuteContext(ctx)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to propagate, got %v", err)
	}
}

func TestRunCommandRequiresSubtitleArgument(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "run"); err == nil {
		t.Fatal("expected argument error")
	}
}
