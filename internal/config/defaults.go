package config

const (
	defaultOutputDir = "~/.local/share/subdub/output"
	defaultWorkDir   = "~/.local/share/subdub/work"
	defaultLogDir    = "~/.local/share/subdub/logs"
	defaultJobsDir   = "~/.local/share/subdub/jobs"

	defaultSampleRate = 22050
	defaultChannels   = 1

	defaultTTSEngine         = "command"
	defaultTTSTimeoutSeconds = 300

	defaultStrategy         = "stretch"
	defaultStretchThreshold = 0.05

	// Wide range for the stretch policy.
	defaultMaxSpeedRatio = 1.5
	defaultMinSpeedRatio = 0.7

	// Conservative range for hq-stretch, protecting audio quality.
	defaultHQMaxSpeedRatio = 1.3
	defaultHQMinSpeedRatio = 0.8

	// Tight range for the adaptive fine-correction pass.
	defaultAdaptiveMaxSpeedRatio = 1.15
	defaultAdaptiveMinSpeedRatio = 0.85
	defaultAdaptiveTolerance     = 0.15

	defaultIterativeMaxAttempts = 4
	defaultIterativeTolerance   = 0.05
	defaultBiasAdjustmentFactor = 1.5
	defaultMaxLengthBias        = 2.0

	defaultSynthesisWorkers = 2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			JobsDir:   defaultJobsDir,
		},
		Audio: Audio{
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		},
		TTS: TTS{
			Engine:         defaultTTSEngine,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Sync: Sync{
			Strategy:              defaultStrategy,
			StretchThreshold:      defaultStretchThreshold,
			MaxSpeedRatio:         defaultMaxSpeedRatio,
			MinSpeedRatio:         defaultMinSpeedRatio,
			HQMaxSpeedRatio:       defaultHQMaxSpeedRatio,
			HQMinSpeedRatio:       defaultHQMinSpeedRatio,
			AdaptiveMaxSpeedRatio: defaultAdaptiveMaxSpeedRatio,
			AdaptiveMinSpeedRatio: defaultAdaptiveMinSpeedRatio,
			AdaptiveTolerance:     defaultAdaptiveTolerance,
			IterativeMaxAttempts:  defaultIterativeMaxAttempts,
			IterativeTolerance:    defaultIterativeTolerance,
			BiasAdjustmentFactor:  defaultBiasAdjustmentFactor,
			MaxLengthBias:         defaultMaxLengthBias,
		},
		Workers: Workers{
			Synthesis: defaultSynthesisWorkers,
		},
		Jobs: Jobs{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
