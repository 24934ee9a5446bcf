package vision

import (
	"fmt"
	"strings"

	"github.com/fieldscope/fieldscope/internal/model"
)

// NewProvider creates a vision provider based on configuration. An empty
// provider name disables live inference (nil, nil): the orchestrator then
// serves every request from the fallback generator.
func NewProvider(config model.VisionConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (supported: openai)", config.Provider)
	}
}
