package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/fieldscope/fieldscope/internal/model"
)

func TestInstructions_ModeClauses(t *testing.T) {
	tests := []struct {
		mode     model.OperatingMode
		contains string
		excludes string
	}{
		{model.ModeSafetyCheck, "immediate hazards only", "repair instructions"},
		{model.ModeDiagnosis, "most likely fault", "ordered list"},
		{model.ModeRepairGuide, "safety has already been confirmed", "Do not diagnose"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Instructions(tt.mode)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("instructions for %s missing %q", tt.mode, tt.contains)
			}
			if strings.Contains(got, tt.excludes) {
				t.Errorf("instructions for %s should not contain %q", tt.mode, tt.excludes)
			}
			// Every mode carries the shared safety preamble and schema.
			if !strings.Contains(got, `"UNCERTAIN"`) || !strings.Contains(got, `"repair_steps"`) {
				t.Errorf("instructions for %s missing preamble schema", tt.mode)
			}
		})
	}
}

func TestInstructions_Deterministic(t *testing.T) {
	a := Instructions(model.ModeDiagnosis)
	b := Instructions(model.ModeDiagnosis)
	if a != b {
		t.Error("instructions are not deterministic")
	}
}

func TestReportUser_ChronologicalSerialization(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	entries := []model.LogEntry{
		{Source: model.SourceSystem, Message: "session started", Timestamp: base},
		{Source: model.SourceAnalyzer, Message: "DANGER: exposed wiring", Timestamp: base.Add(time.Minute)},
	}

	got := ReportUser(entries)
	first := strings.Index(got, "session started")
	second := strings.Index(got, "exposed wiring")
	if first == -1 || second == -1 {
		t.Fatalf("missing entries in serialized log:\n%s", got)
	}
	if first > second {
		t.Error("entries serialized out of order")
	}
}
