package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subdub/internal/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.TTS.Command = "true"
	return cfg
}

func TestDefaultValidatesWithCommand(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRequiresCommandForCommandEngine(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when tts.command is empty")
	}
	if !strings.Contains(err.Error(), "tts.command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresURLForHTTPEngine(t *testing.T) {
	cfg := config.Default()
	cfg.TTS.Engine = "http"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when tts.url is empty")
	}
	cfg.TTS.URL = "http://127.0.0.1:9880/synthesize"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := validConfig()
	cfg.TTS.Engine = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.Strategy = "warp"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if !strings.Contains(err.Error(), "sync.strategy") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonBracketingRange(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.MinSpeedRatio = 1.2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min ratio above 1.0")
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[tts]
engine = "command"
command = "mytts"

[sync]
strategy = "HQ-Stretch"
max_speed_ratio = 2.0

[audio]
sample_rate = 44100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Sync.Strategy != "hq-stretch" {
		t.Fatalf("expected normalized strategy, got %q", cfg.Sync.Strategy)
	}
	if cfg.Sync.MaxSpeedRatio != 2.0 {
		t.Fatalf("expected overlay max_speed_ratio, got %v", cfg.Sync.MaxSpeedRatio)
	}
	if cfg.Sync.MinSpeedRatio != 0.7 {
		t.Fatalf("expected default min_speed_ratio, got %v", cfg.Sync.MinSpeedRatio)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("expected overlay sample rate, got %d", cfg.Audio.SampleRate)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	_, _, exists, err := config.Load(path)
	if exists {
		t.Fatal("expected missing file to be reported as absent")
	}
	// Defaults alone fail validation (no tts.command); that error is expected.
	if err == nil {
		t.Fatal("expected validation error for bare defaults")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[sync]") {
		t.Fatalf("sample config missing [sync] section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := validConfig()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JobsDir = filepath.Join(base, "jobs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Paths.JobsDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}
