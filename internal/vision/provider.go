// Package vision issues classification and summarization requests to a
// vision-inference service and translates its failures into the session's
// error taxonomy.
package vision

import (
	"context"

	"github.com/fieldscope/fieldscope/internal/model"
)

// Provider defines the interface for vision-inference providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Classify submits one frame for analysis. Single attempt, no internal
	// retry: a stale frame must not be resubmitted blindly, so retries are
	// the caller's decision via re-invocation.
	Classify(ctx context.Context, req ClassifyRequest) (*model.AnalysisResult, error)

	// Summarize runs a plain-text completion over the given system and
	// user messages. Used for incident-report assembly.
	Summarize(ctx context.Context, system, user string) (string, error)
}

// ClassifyRequest carries one analysis attempt.
type ClassifyRequest struct {
	// Mode selects the instructions sent with the frame.
	Mode model.OperatingMode

	// Frame is the encoded image (JPEG or PNG).
	Frame []byte

	// UserContext is optional operator-supplied text describing the
	// equipment or symptom.
	UserContext string
}
