package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subdub/internal/audio"
	"subdub/internal/config"
)

// CommandEngine shells out to an external TTS binary per synthesis call.
// The binary is invoked as:
//
//	<command> [command_args...] --text <text> --voice <ref> [--length-bias <v>] --output <wav>
//
// and must write a PCM16 WAV to the output path.
type CommandEngine struct {
	command       string
	args          []string
	timeout       time.Duration
	workDir       string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewCommandEngine creates a command engine from configuration.
func NewCommandEngine(cfg config.TTS) *CommandEngine {
	return &CommandEngine{
		command: cfg.Command,
		args:    append([]string(nil), cfg.CommandArgs...),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		workDir: os.TempDir(),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *CommandEngine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// WithWorkDir overrides where per-call output WAVs are staged.
func (e *CommandEngine) WithWorkDir(dir string) {
	if strings.TrimSpace(dir) != "" {
		e.workDir = dir
	}
}

func (e *CommandEngine) Name() string { return "command" }

// Check verifies the configured binary resolves on PATH.
func (e *CommandEngine) Check(_ context.Context) error {
	if _, err := exec.LookPath(e.command); err != nil {
		return fmt.Errorf("tts command %q not found: %w", e.command, err)
	}
	return nil
}

func (e *CommandEngine) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}

	outPath := filepath.Join(e.workDir, "tts-"+uuid.NewString()+".wav")
	defer os.Remove(outPath)

	args := append([]string(nil), e.args...)
	args = append(args, "--text", req.Text, "--voice", req.VoiceRef)
	if req.LengthBias != nil {
		args = append(args, "--length-bias", strconv.FormatFloat(*req.LengthBias, 'f', 4, 64))
	}
	args = append(args, "--output", outPath)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := e.run(ctx, e.command, args...); err != nil {
		return nil, err
	}

	clip, err := audio.ReadWAVFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if clip.Empty() {
		return nil, fmt.Errorf("synthesize: engine produced no audio")
	}
	return &Result{Clip: clip}, nil
}

func (e *CommandEngine) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
