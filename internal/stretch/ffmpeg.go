package stretch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"subdub/internal/audio"
)

// atempo accepts factors in [0.5, 2.0]; ratios outside that window are
// expressed as a chain of two filters.
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// FFmpegStretcher shells out to ffmpeg's atempo filter. Input and output
// travel through temporary WAV files staged in workDir.
type FFmpegStretcher struct {
	binary        string
	workDir       string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewFFmpegStretcher creates a stretcher driving the given ffmpeg binary.
func NewFFmpegStretcher(binary string) *FFmpegStretcher {
	return &FFmpegStretcher{
		binary:  binary,
		workDir: os.TempDir(),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *FFmpegStretcher) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithWorkDir overrides where intermediate WAVs are staged.
func (s *FFmpegStretcher) WithWorkDir(dir string) {
	if strings.TrimSpace(dir) != "" {
		s.workDir = dir
	}
}

// Check verifies the ffmpeg binary resolves on PATH.
func (s *FFmpegStretcher) Check(_ context.Context) error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("ffmpeg binary %q not found: %w", s.binary, err)
	}
	return nil
}

// Stretch runs the clip through atempo at the given speed ratio and returns
// the retimed audio at the clip's original sample rate.
func (s *FFmpegStretcher) Stretch(ctx context.Context, clip audio.Clip, ratio float64) (audio.Clip, error) {
	if err := ValidateRatio(ratio); err != nil {
		return audio.Clip{}, err
	}
	if clip.Empty() {
		return audio.Clip{}, fmt.Errorf("stretch: empty input clip")
	}

	id := uuid.NewString()
	inPath := filepath.Join(s.workDir, "stretch-"+id+"-in.wav")
	outPath := filepath.Join(s.workDir, "stretch-"+id+"-out.wav")
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	if err := audio.WriteWAVFile(inPath, clip); err != nil {
		return audio.Clip{}, fmt.Errorf("stretch: stage input: %w", err)
	}

	args := []string{
		"-hide_banner",
		"-i", inPath,
		"-filter:a", AtempoChain(ratio),
		"-ar", fmt.Sprintf("%d", clip.Rate),
		"-y", outPath,
	}
	if err := s.run(ctx, s.binary, args...); err != nil {
		return audio.Clip{}, err
	}

	out, err := audio.ReadWAVFile(outPath)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("stretch: read output: %w", err)
	}
	if out.Empty() {
		return audio.Clip{}, fmt.Errorf("stretch: ffmpeg produced no audio")
	}
	if out.Rate != clip.Rate {
		out = audio.Resample(out, clip.Rate)
	}
	return out, nil
}

// AtempoChain renders the atempo filter expression for a speed ratio,
// chaining two filters when the ratio falls outside atempo's native window.
func AtempoChain(ratio float64) string {
	switch {
	case ratio >= atempoMin && ratio <= atempoMax:
		return fmt.Sprintf("atempo=%.4f", ratio)
	case ratio < atempoMin:
		rest := ratio / atempoMin
		if rest < atempoMin {
			rest = atempoMin
		}
		return fmt.Sprintf("atempo=%.4f,atempo=%.4f", atempoMin, rest)
	default:
		rest := ratio / atempoMax
		if rest > atempoMax {
			rest = atempoMax
		}
		return fmt.Sprintf("atempo=%.4f,atempo=%.4f", atempoMax, rest)
	}
}

func (s *FFmpegStretcher) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
