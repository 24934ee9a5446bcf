package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/fieldscope/fieldscope/internal/model"
)

// completionServer returns an httptest server that answers every chat
// completion with the given message content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testProvider(t *testing.T, baseURL string) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider(model.VisionConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return provider
}

func TestOpenAIProvider_Classify_Success(t *testing.T) {
	payload := `{"status":"DANGER","headline":"Exposed live conductor","reasoning":"A frayed cable shows bare copper near the junction box.","action_required":"Step back and cut power at the breaker."}`
	server := completionServer(t, payload)
	defer server.Close()

	provider := testProvider(t, server.URL)

	result, err := provider.Classify(context.Background(), ClassifyRequest{
		Mode:  model.ModeSafetyCheck,
		Frame: []byte{0xFF, 0xD8, 0xFF, 0xE0},
	})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if result.Status != model.StatusDanger {
		t.Errorf("expected DANGER, got %s", result.Status)
	}
	if result.Headline != "Exposed live conductor" {
		t.Errorf("unexpected headline: %q", result.Headline)
	}
	if result.Synthetic {
		t.Error("genuine result marked synthetic")
	}
	if result.Mode != model.ModeSafetyCheck {
		t.Errorf("expected mode recorded on result, got %s", result.Mode)
	}
}

func TestOpenAIProvider_Classify_MissingStatusDefaultsUncertain(t *testing.T) {
	// An incomplete classification is a signal, not a hard error.
	server := completionServer(t, `{"headline":"Partial read","reasoning":"x","action_required":"y"}`)
	defer server.Close()

	provider := testProvider(t, server.URL)

	result, err := provider.Classify(context.Background(), ClassifyRequest{
		Mode:  model.ModeDiagnosis,
		Frame: []byte{0x01},
	})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Status != model.StatusUncertain {
		t.Errorf("expected UNCERTAIN default, got %s", result.Status)
	}
}

func TestOpenAIProvider_Classify_StripsRepairStepsOutsideRepairMode(t *testing.T) {
	payload := `{"status":"SAFE","headline":"No hazard visible","reasoning":"x","action_required":"y","repair_steps":["unscrew the panel"]}`
	server := completionServer(t, payload)
	defer server.Close()

	provider := testProvider(t, server.URL)

	result, err := provider.Classify(context.Background(), ClassifyRequest{
		Mode:  model.ModeSafetyCheck,
		Frame: []byte{0x01},
	})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if len(result.RepairSteps) != 0 {
		t.Errorf("repair steps must be stripped outside repair_guide, got %v", result.RepairSteps)
	}
}

func TestOpenAIProvider_Classify_CorruptResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I think the equipment looks fine."},
		{"unknown status", `{"status":"MOSTLY_FINE","headline":"x","reasoning":"y","action_required":"z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.content)
			defer server.Close()

			provider := testProvider(t, server.URL)
			_, err := provider.Classify(context.Background(), ClassifyRequest{
				Mode:  model.ModeSafetyCheck,
				Frame: []byte{0x01},
			})
			if !errors.Is(err, ErrResponseCorrupt) {
				t.Errorf("expected ErrResponseCorrupt, got %v", err)
			}
		})
	}
}

func TestOpenAIProvider_Classify_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider := testProvider(t, server.URL)
	_, err := provider.Classify(context.Background(), ClassifyRequest{
		Mode:  model.ModeSafetyCheck,
		Frame: []byte{0x01},
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestOpenAIProvider_Classify_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider := testProvider(t, server.URL)
	_, err := provider.Classify(context.Background(), ClassifyRequest{
		Mode:  model.ModeSafetyCheck,
		Frame: []byte{0x01},
	})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
	if svcErr.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", svcErr.Code)
	}
}

func TestOpenAIProvider_Summarize(t *testing.T) {
	server := completionServer(t, "  Two events were logged during the session.  ")
	defer server.Close()

	provider := testProvider(t, server.URL)
	summary, err := provider.Summarize(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summary != "Two events were logged during the session." {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(model.VisionConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	p, err := NewProvider(model.VisionConfig{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("empty provider should disable inference, got %v, %v", p, err)
	}

	if _, err := NewProvider(model.VisionConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err = NewProvider(model.VisionConfig{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("openai provider failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("unexpected provider name: %s", p.Name())
	}
}
