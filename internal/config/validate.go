package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Channels != 1 {
		return errors.New("audio.channels must be 1 (mono output)")
	}
	return nil
}

func (c *Config) validateTTS() error {
	switch c.TTS.Engine {
	case "command":
		if strings.TrimSpace(c.TTS.Command) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/subdub/config.toml"
			}
			return fmt.Errorf("tts.command is required for the command engine; edit %s (create with 'subdub config init')", defaultPath)
		}
	case "http":
		if strings.TrimSpace(c.TTS.URL) == "" {
			return errors.New("tts.url must be set when tts.engine is \"http\"")
		}
	default:
		return fmt.Errorf("tts.engine: unsupported value %q (expected \"command\" or \"http\")", c.TTS.Engine)
	}
	if c.TTS.TimeoutSeconds <= 0 {
		return errors.New("tts.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	// Mirrors strategy.Names; importing internal/strategy here would create
	// an import cycle.
	switch c.Sync.Strategy {
	case "basic", "stretch", "hq-stretch", "adaptive", "iterative":
	default:
		return fmt.Errorf("sync.strategy: unknown value %q (expected basic, stretch, hq-stretch, adaptive, or iterative)", c.Sync.Strategy)
	}
	if c.Sync.StretchThreshold < 0 || c.Sync.StretchThreshold >= 1 {
		return errors.New("sync.stretch_threshold must be in [0, 1)")
	}
	ranges := []struct {
		name     string
		min, max float64
	}{
		{"sync.min_speed_ratio/sync.max_speed_ratio", c.Sync.MinSpeedRatio, c.Sync.MaxSpeedRatio},
		{"sync.hq_min_speed_ratio/sync.hq_max_speed_ratio", c.Sync.HQMinSpeedRatio, c.Sync.HQMaxSpeedRatio},
		{"sync.adaptive_min_speed_ratio/sync.adaptive_max_speed_ratio", c.Sync.AdaptiveMinSpeedRatio, c.Sync.AdaptiveMaxSpeedRatio},
	}
	for _, r := range ranges {
		if r.min <= 0 || r.max <= 0 {
			return fmt.Errorf("%s must be positive", r.name)
		}
		if r.min > 1 || r.max < 1 {
			return fmt.Errorf("%s must bracket 1.0", r.name)
		}
	}
	if c.Sync.IterativeMaxAttempts < 1 {
		return errors.New("sync.iterative_max_attempts must be at least 1")
	}
	if c.Sync.IterativeTolerance <= 0 {
		return errors.New("sync.iterative_tolerance must be positive")
	}
	if c.Sync.AdaptiveTolerance <= 0 {
		return errors.New("sync.adaptive_tolerance must be positive")
	}
	if c.Sync.BiasAdjustmentFactor <= 0 {
		return errors.New("sync.bias_adjustment_factor must be positive")
	}
	if c.Sync.MaxLengthBias <= 0 {
		return errors.New("sync.max_length_bias must be positive")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Synthesis < 1 {
		return errors.New("workers.synthesis must be at least 1")
	}
	return nil
}
