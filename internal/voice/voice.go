// Package voice delivers spoken feedback through an external TTS endpoint.
// Everything here is best-effort: a failed utterance is dropped, never
// retried, and never affects the analysis flow.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fieldscope/fieldscope/internal/model"
)

// Sink defines the voice-feedback contract.
type Sink interface {
	// Speak enqueues one utterance. The returned error is informational;
	// callers are expected to ignore it beyond a debug log.
	Speak(ctx context.Context, text string) error
}

// Null discards all utterances. Used when voice feedback is disabled.
type Null struct{}

// Speak does nothing.
func (Null) Speak(ctx context.Context, text string) error { return nil }

// HTTPSink posts utterances to a TTS daemon.
type HTTPSink struct {
	baseURL    string
	voice      string
	httpClient *http.Client
}

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// NewHTTPSink creates a sink for the given TTS endpoint.
func NewHTTPSink(config model.VoiceConfig) (*HTTPSink, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("voice base URL is required")
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPSink{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		voice:      config.Voice,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Speak posts the utterance and drains the response.
func (s *HTTPSink) Speak(ctx context.Context, text string) error {
	body, err := json.Marshal(speakRequest{Text: text, Voice: s.voice})
	if err != nil {
		return fmt.Errorf("marshal utterance: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/speak", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("tts endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
