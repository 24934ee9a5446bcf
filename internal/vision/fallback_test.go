package vision

import (
	"testing"

	"github.com/fieldscope/fieldscope/internal/model"
)

func TestFallback_RotationWrapsDeterministically(t *testing.T) {
	f := NewFallback()

	var first []string
	for i := 0; i < len(scanPool); i++ {
		first = append(first, f.Next(model.ModeSafetyCheck).Headline)
	}

	// Second pass over the counter must replay the same sequence.
	for i := 0; i < len(scanPool); i++ {
		got := f.Next(model.ModeSafetyCheck).Headline
		if got != first[i] {
			t.Errorf("rotation position %d: expected %q, got %q", i, first[i], got)
		}
	}
}

func TestFallback_ResultsAreSynthetic(t *testing.T) {
	f := NewFallback()
	result := f.Next(model.ModeDiagnosis)

	if !result.Synthetic {
		t.Error("fallback result not marked synthetic")
	}
	if result.Mode != model.ModeDiagnosis {
		t.Errorf("expected mode recorded, got %s", result.Mode)
	}
	if result.Headline == "" || result.ActionRequired == "" {
		t.Error("fallback result must satisfy the full result contract")
	}
}

func TestFallback_NeverFabricatesGoAhead(t *testing.T) {
	f := NewFallback()
	for i := 0; i < len(scanPool)*2; i++ {
		for _, mode := range []model.OperatingMode{model.ModeSafetyCheck, model.ModeDiagnosis} {
			if got := f.Next(mode).Status; got == model.StatusSafe {
				t.Fatalf("scan fallback produced a SAFE go-ahead in %s mode", mode)
			}
		}
	}
}

func TestFallback_RepairModeCarriesSteps(t *testing.T) {
	f := NewFallback()
	for i := 0; i < len(repairPool); i++ {
		result := f.Next(model.ModeRepairGuide)
		if len(result.RepairSteps) == 0 {
			t.Error("repair-guide fallback must include repair steps")
		}
	}
}

func TestFallback_PoolIsolation(t *testing.T) {
	// Mutating a returned result must not corrupt the pool.
	f := NewFallback()
	r1 := f.Next(model.ModeRepairGuide)
	r1.Headline = "mutated"
	r1.RepairSteps[0] = "mutated step"

	g := NewFallback()
	r2 := g.Next(model.ModeRepairGuide)
	if r2.Headline == "mutated" {
		t.Error("pool headline was mutated through a returned result")
	}
}
