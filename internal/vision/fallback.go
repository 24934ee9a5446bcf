package vision

import (
	"sync"
	"time"

	"github.com/fieldscope/fieldscope/internal/model"
)

// scanPool holds the rotating results substituted for safety_check and
// diagnosis requests when the real service is unavailable. None of them is
// a SAFE go-ahead: a synthetic result must never clear a hazard the service
// did not actually look at.
var scanPool = []model.AnalysisResult{
	{
		Status:         model.StatusUncertain,
		Headline:       "Analysis service unavailable",
		Reasoning:      "The inference service could not be reached, so the frame was not evaluated.",
		ActionRequired: "Keep clear of the equipment and retry the scan shortly.",
	},
	{
		Status:         model.StatusUncertain,
		Headline:       "Classification not confirmed",
		Reasoning:      "A placeholder result was substituted because the analysis quota is exhausted.",
		ActionRequired: "Treat the equipment as unverified until a live scan succeeds.",
	},
	{
		Status:         model.StatusUncertain,
		Headline:       "Running in degraded mode",
		Reasoning:      "No live classification is available for this frame.",
		ActionRequired: "Do not proceed with work that depends on a safety confirmation.",
	},
}

// repairPool holds the rotating repair-guide substitutes. Repair mode is
// only reachable once the session already established SAFE, so these carry
// generic precautionary steps rather than equipment-specific guidance.
var repairPool = []model.AnalysisResult{
	{
		Status:         model.StatusSafe,
		Headline:       "Generic repair precautions",
		Reasoning:      "The inference service is unavailable, so only general repair practice can be offered.",
		ActionRequired: "Follow the generic steps and consult the equipment manual.",
		RepairSteps: []string{
			"Power the equipment down and verify zero energy state.",
			"Apply lockout-tagout before touching any component.",
			"Photograph the assembly before disassembly for later reference.",
			"Consult the manufacturer manual for the specific fault.",
		},
	},
	{
		Status:         model.StatusSafe,
		Headline:       "Manual guidance recommended",
		Reasoning:      "No live repair analysis is available for this frame.",
		ActionRequired: "Work from the printed service manual until live guidance returns.",
		RepairSteps: []string{
			"Confirm the equipment is still de-energized.",
			"Locate the fault section in the service manual.",
			"Perform only the steps you can verify visually.",
		},
	},
}

// Fallback produces deterministic, rotating synthetic results that preserve
// the AnalysisResult contract when the real service is over quota or
// unreachable.
type Fallback struct {
	mu sync.Mutex
	n  int
}

// NewFallback creates a fallback generator with its rotation counter at
// zero.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Next returns the next synthetic result for the given mode. Rotation is a
// single session-wide counter with wrap-around, so repeated degraded calls
// cycle through the pool deterministically.
func (f *Fallback) Next(mode model.OperatingMode) *model.AnalysisResult {
	f.mu.Lock()
	n := f.n
	f.n++
	f.mu.Unlock()

	pool := scanPool
	if mode == model.ModeRepairGuide {
		pool = repairPool
	}

	result := pool[n%len(pool)]
	// Copy the steps so callers cannot mutate the pool through the result.
	if len(result.RepairSteps) > 0 {
		result.RepairSteps = append([]string(nil), result.RepairSteps...)
	}
	result.Synthetic = true
	result.Mode = mode
	result.ReceivedAt = time.Now().UTC()
	return &result
}
