package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/fieldscope/internal/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_PersistAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	records := []model.AnalysisRecord{
		{
			ID:             uuid.New().String(),
			SessionID:      "sess-1",
			OperatorID:     "op-1",
			Mode:           model.ModeSafetyCheck,
			Status:         model.StatusDanger,
			Headline:       "Exposed live conductor",
			Reasoning:      "Bare copper visible.",
			ActionRequired: "Cut power at the breaker.",
			CreatedAt:      base,
		},
		{
			ID:             uuid.New().String(),
			SessionID:      "sess-1",
			OperatorID:     "op-1",
			Mode:           model.ModeRepairGuide,
			Status:         model.StatusSafe,
			Headline:       "Cable replacement steps",
			Reasoning:      "Insulation damage is localized.",
			ActionRequired: "Follow the steps in order.",
			RepairSteps:    []string{"de-energize", "remove old cable", "fit replacement"},
			CreatedAt:      base.Add(time.Minute),
		},
	}

	for _, rec := range records {
		if err := s.Persist(ctx, rec); err != nil {
			t.Fatalf("persist failed: %v", err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// Newest first.
	if got[0].Headline != "Cable replacement steps" {
		t.Errorf("expected newest record first, got %q", got[0].Headline)
	}
	if len(got[0].RepairSteps) != 3 || got[0].RepairSteps[1] != "remove old cable" {
		t.Errorf("repair steps did not round-trip: %v", got[0].RepairSteps)
	}
	if got[1].Status != model.StatusDanger || got[1].Mode != model.ModeSafetyCheck {
		t.Errorf("enums did not round-trip: %+v", got[1])
	}
}

func TestSQLite_RecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := model.AnalysisRecord{
			ID:         uuid.New().String(),
			SessionID:  "sess-1",
			OperatorID: "op-1",
			Mode:       model.ModeSafetyCheck,
			Status:     model.StatusUncertain,
			Headline:   "entry",
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := s.Persist(ctx, rec); err != nil {
			t.Fatalf("persist failed: %v", err)
		}
	}

	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected limit of 3, got %d", len(got))
	}
}

func TestSQLite_RecentEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
