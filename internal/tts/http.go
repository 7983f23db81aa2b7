package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subdub/internal/audio"
	"subdub/internal/config"
)

// HTTPEngine talks to a TTS server. The endpoint receives a JSON request and
// answers with a PCM16 WAV body.
type HTTPEngine struct {
	url    string
	client *http.Client
}

type synthesisPayload struct {
	Text       string   `json:"text"`
	Voice      string   `json:"voice"`
	LengthBias *float64 `json:"length_bias,omitempty"`
	// TargetSeconds requests engine-native duration targeting; servers
	// without support ignore it or answer 501.
	TargetSeconds *float64 `json:"target_seconds,omitempty"`
}

// NewHTTPEngine creates an HTTP engine from configuration.
func NewHTTPEngine(cfg config.TTS) *HTTPEngine {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &HTTPEngine{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

func (e *HTTPEngine) Name() string { return "http" }

// Check validates the configured endpoint URL.
func (e *HTTPEngine) Check(_ context.Context) error {
	parsed, err := url.Parse(e.url)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("tts url %q is not a valid endpoint", e.url)
	}
	return nil
}

func (e *HTTPEngine) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}
	payload := synthesisPayload{Text: req.Text, Voice: req.VoiceRef, LengthBias: req.LengthBias}
	return e.post(ctx, payload)
}

// SynthesizeToDuration asks the server for audio matching the target
// duration. Servers answering 501 report the capability as unsupported.
func (e *HTTPEngine) SynthesizeToDuration(ctx context.Context, req Request, target time.Duration) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}
	seconds := target.Seconds()
	payload := synthesisPayload{Text: req.Text, Voice: req.VoiceRef, TargetSeconds: &seconds}
	return e.post(ctx, payload)
}

func (e *HTTPEngine) post(ctx context.Context, payload synthesisPayload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("synthesize: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("synthesize: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotImplemented {
		return nil, fmt.Errorf("synthesize: server does not implement duration targeting")
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesize: server returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	clip, err := audio.DecodeWAV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if clip.Empty() {
		return nil, fmt.Errorf("synthesize: server produced no audio")
	}
	return &Result{Clip: clip}, nil
}
