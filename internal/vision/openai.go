package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/prompt"
)

// OpenAIProvider implements the Provider interface using the OpenAI
// chat-completions API with image input.
type OpenAIProvider struct {
	client *openai.Client
	config model.VisionConfig
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config model.VisionConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// Classify submits the frame with mode-specific instructions and parses the
// structured result.
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (*model.AnalysisResult, error) {
	userText := req.UserContext
	if userText == "" {
		userText = "Analyze the attached frame per the instructions."
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(req.Frame),
		base64.StdEncoding.EncodeToString(req.Frame))

	chatReq := openai.ChatCompletionRequest{
		Model: p.model(),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.Instructions(req.Mode),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: userText},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens:   p.maxTokens(),
		Temperature: 0.2,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choice list", ErrResponseCorrupt)
	}

	return parseResult(resp.Choices[0].Message.Content, req.Mode)
}

// Summarize runs a plain completion for report assembly.
func (p *OpenAIProvider) Summarize(ctx context.Context, system, user string) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   p.maxTokens(),
		Temperature: 0.3,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choice list", ErrResponseCorrupt)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) model() string {
	if p.config.Model != "" {
		return p.config.Model
	}
	return openai.GPT4oMini
}

func (p *OpenAIProvider) maxTokens() int {
	if p.config.MaxTokens > 0 {
		return p.config.MaxTokens
	}
	return 1000
}

func (p *OpenAIProvider) timeout() time.Duration {
	if p.config.TimeoutSeconds > 0 {
		return time.Duration(p.config.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// classifyTransportError maps SDK errors onto the session taxonomy: quota
// signals become ErrQuotaExceeded, everything else a *ServiceError.
func classifyTransportError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == "insufficient_quota" {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		}
		return &ServiceError{Code: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, reqErr.Err)
		}
		return &ServiceError{Code: reqErr.HTTPStatusCode, Detail: reqErr.Error()}
	}

	return &ServiceError{Code: 0, Detail: err.Error()}
}

// parseResult validates the structured payload. A missing status defaults
// to UNCERTAIN: an incomplete classification is a meaningful signal, not a
// hard error. An unknown status value, by contrast, is corrupt.
func parseResult(content string, mode model.OperatingMode) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseCorrupt, err)
	}

	if result.Status == "" {
		result.Status = model.StatusUncertain
	} else if !model.ValidStatus(result.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrResponseCorrupt, result.Status)
	}

	if mode != model.ModeRepairGuide {
		result.RepairSteps = nil
	}
	result.Mode = mode
	result.ReceivedAt = time.Now().UTC()
	return &result, nil
}
