package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("FIELDSCOPE_TEST_OPERATOR", "op-42")

	id, err := EnvProvider{Var: "FIELDSCOPE_TEST_OPERATOR"}.OperatorID(context.Background())
	if err != nil {
		t.Fatalf("resolution failed: %v", err)
	}
	if id != "op-42" {
		t.Errorf("expected op-42, got %q", id)
	}
}

func TestEnvProvider_Missing(t *testing.T) {
	_, err := EnvProvider{Var: "FIELDSCOPE_TEST_UNSET_VAR"}.OperatorID(context.Background())
	if !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity, got %v", err)
	}

	_, err = EnvProvider{}.OperatorID(context.Background())
	if !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity for empty var name, got %v", err)
	}
}

// countingProvider records how many times upstream resolution happens.
type countingProvider struct {
	id    string
	err   error
	calls int
}

func (p *countingProvider) OperatorID(ctx context.Context) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.id, nil
}

func TestCachedProvider_MemoizesHits(t *testing.T) {
	upstream := &countingProvider{id: "op-7"}
	cached := NewCachedProvider(upstream, time.Minute)

	for i := 0; i < 3; i++ {
		id, err := cached.OperatorID(context.Background())
		if err != nil {
			t.Fatalf("resolution %d failed: %v", i, err)
		}
		if id != "op-7" {
			t.Errorf("resolution %d: expected op-7, got %q", i, id)
		}
	}
	if upstream.calls != 1 {
		t.Errorf("expected exactly one upstream call, got %d", upstream.calls)
	}
}

func TestCachedProvider_DoesNotCacheFailures(t *testing.T) {
	upstream := &countingProvider{err: ErrNoIdentity}
	cached := NewCachedProvider(upstream, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.OperatorID(context.Background()); !errors.Is(err, ErrNoIdentity) {
			t.Fatalf("expected ErrNoIdentity, got %v", err)
		}
	}
	if upstream.calls != 2 {
		t.Errorf("negative result was cached: %d upstream calls", upstream.calls)
	}

	// Identity appearing later takes effect immediately.
	upstream.err = nil
	upstream.id = "op-9"
	id, err := cached.OperatorID(context.Background())
	if err != nil || id != "op-9" {
		t.Errorf("expected op-9 after identity appears, got %q, %v", id, err)
	}
}
