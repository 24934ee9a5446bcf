// Package prompt maps operating modes to the instructions and output
// contract sent to the vision-inference service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fieldscope/fieldscope/internal/model"
)

// preamble is shared by every mode. It grants the analyzer refusal
// authority, requires epistemic humility on unclear imagery, and pins the
// output schema.
const preamble = `You are a field-equipment safety analyzer. You inspect a single photograph of equipment and respond with one valid JSON object only (no markdown, no commentary, no code fences).

Rules:
- If you cannot see the equipment clearly, or the image is blurry, dark, or ambiguous, you MUST set status to "UNCERTAIN". Never guess.
- You have full authority to refuse a task by reporting DANGER or UNCERTAIN; never invent reassurance.
- "status" must be exactly one of: "SAFE", "DANGER", "UNCERTAIN".
- "headline" is a 3-5 word label.
- "reasoning" is one sentence describing the visual evidence for the status.
- "action_required" is one directive sentence for the operator.

Schema:
{
  "status": "<SAFE|DANGER|UNCERTAIN>",
  "headline": "<string>",
  "reasoning": "<string>",
  "action_required": "<string>",
  "repair_steps": ["<string>", ...]
}`

// Instructions returns the full system instructions for the given mode.
// Deterministic, no side effects.
func Instructions(mode model.OperatingMode) string {
	var task string
	switch mode {
	case model.ModeSafetyCheck:
		task = `Task: scan the image for immediate hazards only (exposed conductors, leaks, fire, structural failure, missing guards). Do not diagnose faults. Leave "repair_steps" empty.`
	case model.ModeDiagnosis:
		task = `Task: diagnose the most likely fault visible in the image. If any hazard is visible, set status to "DANGER" and stop reasoning about the fault. Leave "repair_steps" empty.`
	case model.ModeRepairGuide:
		task = `Task: safety has already been confirmed for this equipment. Provide an ordered list of repair instructions in "repair_steps", one step per entry, starting from the first physical action.`
	default:
		task = `Task: scan the image for immediate hazards only. Leave "repair_steps" empty.`
	}
	return preamble + "\n\n" + task
}

// ReportSystem returns the system instructions for the incident-report
// summarization request.
func ReportSystem() string {
	return `You summarize a field-session event log into a short incident report. Report only what the log says: do not speculate, do not soften danger findings, and keep chronological order. Respond with plain text, at most six sentences.`
}

// ReportUser serializes log entries (oldest first) into the user message
// for the summarization request.
func ReportUser(entries []model.LogEntry) string {
	var b strings.Builder
	b.WriteString("Session event log:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Source, e.Message)
	}
	b.WriteString("\nWrite the incident report.")
	return b.String()
}
