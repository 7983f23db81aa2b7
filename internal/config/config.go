package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	JobsDir   string `toml:"jobs_dir"`
}

// Audio contains output track settings.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
	Channels   int `toml:"channels"`
}

// TTS contains configuration for the speech synthesis backend.
type TTS struct {
	// Engine selects the synthesis backend ("command" or "http").
	Engine string `toml:"engine"`
	// Command is the external TTS binary for the command engine.
	Command string `toml:"command"`
	// CommandArgs are extra arguments passed before the generated ones.
	CommandArgs []string `toml:"command_args"`
	// URL is the synthesis endpoint for the http engine.
	URL string `toml:"url"`
	// TimeoutSeconds bounds a single synthesis call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Sync contains time-synchronization strategy settings.
type Sync struct {
	// Strategy is the default policy for `subdub run`.
	Strategy string `toml:"strategy"`
	// StretchThreshold is the dead-zone below which no stretch is applied.
	StretchThreshold float64 `toml:"stretch_threshold"`
	// MaxSpeedRatio / MinSpeedRatio bound the stretch policy.
	MaxSpeedRatio float64 `toml:"max_speed_ratio"`
	MinSpeedRatio float64 `toml:"min_speed_ratio"`
	// HQMaxSpeedRatio / HQMinSpeedRatio bound the hq-stretch policy.
	HQMaxSpeedRatio float64 `toml:"hq_max_speed_ratio"`
	HQMinSpeedRatio float64 `toml:"hq_min_speed_ratio"`
	// AdaptiveMaxSpeedRatio / AdaptiveMinSpeedRatio bound the adaptive
	// fine-correction pass.
	AdaptiveMaxSpeedRatio float64 `toml:"adaptive_max_speed_ratio"`
	AdaptiveMinSpeedRatio float64 `toml:"adaptive_min_speed_ratio"`
	// AdaptiveTolerance is the relative duration window that skips the
	// second adaptive synthesis.
	AdaptiveTolerance float64 `toml:"adaptive_tolerance"`
	// IterativeMaxAttempts caps synthesis attempts per entry.
	IterativeMaxAttempts int `toml:"iterative_max_attempts"`
	// IterativeTolerance is the relative duration error that stops the search.
	IterativeTolerance float64 `toml:"iterative_tolerance"`
	// BiasAdjustmentFactor scales length-bias corrections between attempts.
	BiasAdjustmentFactor float64 `toml:"bias_adjustment_factor"`
	// MaxLengthBias clamps the length-bias magnitude handed to the engine.
	MaxLengthBias float64 `toml:"max_length_bias"`
}

// Workers contains concurrency limits.
type Workers struct {
	// Synthesis is the bounded pool size for per-entry synthesis calls.
	Synthesis int `toml:"synthesis"`
}

// Jobs contains run-history settings.
type Jobs struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subdub.
//
// Configuration sections by subsystem:
//   - Paths: output, scratch, log, and job-history directories
//   - Audio: output sample rate and channel count
//   - TTS: synthesis backend selection and connection settings
//   - Sync: strategy defaults, safe ranges, and search parameters
//   - Workers: synthesis pool size
//   - Jobs: run-history recording
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Audio   Audio   `toml:"audio"`
	TTS     TTS     `toml:"tts"`
	Sync    Sync    `toml:"sync"`
	Workers Workers `toml:"workers"`
	Jobs    Jobs    `toml:"jobs"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subdub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subdub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	paths := []*string{&c.Paths.OutputDir, &c.Paths.WorkDir, &c.Paths.LogDir, &c.Paths.JobsDir}
	for _, field := range paths {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.TTS.Engine = strings.ToLower(strings.TrimSpace(c.TTS.Engine))
	c.Sync.Strategy = strings.ToLower(strings.TrimSpace(c.Sync.Strategy))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir}
	if c.Jobs.Enabled {
		dirs = append(dirs, c.Paths.JobsDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for time stretching.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
