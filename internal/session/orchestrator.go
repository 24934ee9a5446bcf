// Package session owns the per-session state: the safety state machine,
// the rate guard, the event log, and the wiring between the camera, the
// inference provider, the voice sink, and the durable store. It is the only
// mutation entry point into the core.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/fieldscope/internal/camera"
	"github.com/fieldscope/fieldscope/internal/guard"
	"github.com/fieldscope/fieldscope/internal/identity"
	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/store"
	"github.com/fieldscope/fieldscope/internal/vision"
	"github.com/fieldscope/fieldscope/internal/voice"
)

// ModeDeniedError rejects an operating mode that the current safety state
// does not permit. The inference client is never reached.
type ModeDeniedError struct {
	Mode  model.OperatingMode
	State model.SafetyState
}

func (e *ModeDeniedError) Error() string {
	return fmt.Sprintf("%s is not available while safety state is %s", e.Mode, e.State)
}

// Deps are the collaborators an orchestrator is wired to. Provider may be
// nil (every request is then served synthetically); Store and Identity may
// be nil (persistence degrades to a no-op); Voice, Fallback, Logger and
// Clock default when nil.
type Deps struct {
	Provider vision.Provider
	Fallback *vision.Fallback
	Camera   camera.Source
	Voice    voice.Sink
	Store    store.Store
	Identity identity.Provider
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Orchestrator owns the session. One instance is constructed per session
// and all mutation flows through it; there are no hidden globals.
type Orchestrator struct {
	cfg      model.Config
	guard    *guard.Guard
	provider vision.Provider
	fallback *vision.Fallback
	camera   camera.Source
	voice    voice.Sink
	store    store.Store
	identity identity.Provider
	logger   *slog.Logger
	now      func() time.Time

	log       *EventLog
	sessionID string

	mu       sync.Mutex
	state    model.SafetyState
	latest   *model.AnalysisResult
	degraded int // consecutive synthetic substitutions
}

// New constructs a session orchestrator in the IDLE state.
func New(cfg model.Config, deps Deps) *Orchestrator {
	if deps.Voice == nil {
		deps.Voice = voice.Null{}
	}
	if deps.Fallback == nil {
		deps.Fallback = vision.NewFallback()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	o := &Orchestrator{
		cfg:       cfg,
		guard:     guard.New(cfg.Guard.Cooldown, cfg.Guard.PerMinuteCap),
		provider:  deps.Provider,
		fallback:  deps.Fallback,
		camera:    deps.Camera,
		voice:     deps.Voice,
		store:     deps.Store,
		identity:  deps.Identity,
		logger:    deps.Logger,
		now:       deps.Clock,
		log:       NewEventLog(),
		sessionID: uuid.New().String(),
		state:     model.StateIdle,
	}
	o.log.Append(model.SourceSystem, "session started")
	return o
}

// modeAllowed is the transition table gating analysis requests. Diagnosis
// must not push past an unresolved hazard or an inconclusive read; repair
// guidance is only offered once safety is confirmed.
func modeAllowed(mode model.OperatingMode, state model.SafetyState) bool {
	switch mode {
	case model.ModeSafetyCheck:
		return true
	case model.ModeDiagnosis:
		return state != model.StateDanger && state != model.StateUncertain
	case model.ModeRepairGuide:
		return state == model.StateSafe
	}
	return false
}

// TriggerAnalysis runs one analysis attempt: admission, capture,
// classification (or synthetic substitution), state transition, feedback
// and persistence. Exactly one log entry records the attempt's outcome.
func (o *Orchestrator) TriggerAnalysis(ctx context.Context, mode model.OperatingMode, userText string) (*model.AnalysisResult, error) {
	if !model.ValidMode(mode) {
		return nil, fmt.Errorf("unknown operating mode: %s", mode)
	}

	if state := o.State(); !modeAllowed(mode, state) {
		denied := &ModeDeniedError{Mode: mode, State: state}
		o.log.Append(model.SourceSystem, denied.Error())
		return nil, denied
	}

	if err := o.guard.TryAdmit(o.now()); err != nil {
		o.log.Append(model.SourceSystem, "analysis not admitted: "+err.Error())
		return nil, err
	}
	// The lock is released on every exit path below; holding it past a
	// return would wedge the session permanently.
	defer o.guard.Release()

	prev := o.beginScan()

	frame, err := o.camera.Capture(ctx)
	if err != nil {
		o.restoreState(prev)
		o.log.Append(model.SourceError, "frame capture unavailable")
		o.logger.Error("capture failed", "error", err)
		return nil, fmt.Errorf("%w: %v", vision.ErrCaptureUnavailable, err)
	}

	result, err := o.classify(ctx, mode, frame, userText)
	if err != nil {
		o.restoreState(prev)
		o.log.Append(model.SourceError, "analysis failed: "+err.Error())
		return nil, err
	}

	o.finish(ctx, prev, result)
	return result, nil
}

// classify obtains a result from the provider, substituting a synthetic one
// on quota exhaustion or when no provider is configured. Service and parse
// failures propagate; the caller aborts without touching the safety state.
func (o *Orchestrator) classify(ctx context.Context, mode model.OperatingMode, frame []byte, userText string) (*model.AnalysisResult, error) {
	if o.provider == nil {
		result := o.fallback.Next(mode)
		o.noteFallback(result)
		return result, nil
	}

	result, err := o.provider.Classify(ctx, vision.ClassifyRequest{
		Mode:        mode,
		Frame:       frame,
		UserContext: userText,
	})
	if err != nil {
		if errors.Is(err, vision.ErrQuotaExceeded) {
			// The one failure with a recovery path: the session must stay
			// demonstrably responsive.
			o.logger.Info("quota exceeded, substituting synthetic result")
			result := o.fallback.Next(mode)
			o.noteFallback(result)
			return result, nil
		}
		return nil, err
	}

	o.mu.Lock()
	o.degraded = 0
	o.mu.Unlock()
	o.log.Append(model.SourceAnalyzer, describeResult(result))
	return result, nil
}

// finish applies the transition rule, echoes the result to the voice sink,
// and forwards genuine results to the store.
func (o *Orchestrator) finish(ctx context.Context, prev model.SafetyState, result *model.AnalysisResult) {
	o.mu.Lock()
	o.latest = result
	if result.Mode == model.ModeRepairGuide {
		// Repair results are a side-channel query, not a classification.
		o.state = prev
	} else {
		o.state = stateFor(result.Status)
	}
	o.mu.Unlock()

	o.speak(result.Headline + ". " + result.ActionRequired)

	if !result.Synthetic {
		o.persist(ctx, result)
	}
}

// noteFallback logs a synthetic substitution and announces degraded mode
// once the configured number of consecutive substitutions is reached.
func (o *Orchestrator) noteFallback(result *model.AnalysisResult) {
	o.log.Append(model.SourceAnalyzer, describeResult(result)+" (synthetic)")

	threshold := o.cfg.Session.DegradedThreshold
	o.mu.Lock()
	o.degraded++
	announce := threshold > 0 && o.degraded == threshold
	o.mu.Unlock()

	if announce {
		o.log.Append(model.SourceSystem, "degraded mode: live analysis unavailable, synthetic guidance in effect")
		o.speak("Warning. Running in degraded mode without live analysis.")
	}
}

// persist forwards a genuine result to the durable store. Best-effort only:
// a missing identity skips it, a failure is noted and swallowed.
func (o *Orchestrator) persist(ctx context.Context, result *model.AnalysisResult) {
	if o.store == nil || o.identity == nil {
		return
	}

	operatorID, err := o.identity.OperatorID(ctx)
	if err != nil {
		o.logger.Debug("persistence skipped, no operator identity", "error", err)
		return
	}

	rec := model.AnalysisRecord{
		ID:             uuid.New().String(),
		SessionID:      o.sessionID,
		OperatorID:     operatorID,
		Mode:           result.Mode,
		Status:         result.Status,
		Headline:       result.Headline,
		Reasoning:      result.Reasoning,
		ActionRequired: result.ActionRequired,
		RepairSteps:    result.RepairSteps,
		CreatedAt:      result.ReceivedAt,
	}
	if err := o.store.Persist(ctx, rec); err != nil {
		o.logger.Warn("persistence failed", "error", err)
	}
}

// speak fires the utterance without blocking the control flow.
func (o *Orchestrator) speak(text string) {
	go func() {
		if err := o.voice.Speak(context.Background(), text); err != nil {
			o.logger.Debug("voice feedback dropped", "error", err)
		}
	}()
}

// State returns the current safety state.
func (o *Orchestrator) State() model.SafetyState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Latest returns the most recent analysis result, nil before the first.
func (o *Orchestrator) Latest() *model.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// Log returns a newest-first copy of the session event log.
func (o *Orchestrator) Log() []model.LogEntry {
	return o.log.Entries()
}

// SessionID returns the identifier persisted with this session's records.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

func (o *Orchestrator) beginScan() model.SafetyState {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.state
	o.state = model.StateScanning
	return prev
}

func (o *Orchestrator) restoreState(prev model.SafetyState) {
	o.mu.Lock()
	o.state = prev
	o.mu.Unlock()
}

func (o *Orchestrator) degradedMode() bool {
	threshold := o.cfg.Session.DegradedThreshold
	o.mu.Lock()
	defer o.mu.Unlock()
	return threshold > 0 && o.degraded >= threshold
}

func stateFor(status model.Status) model.SafetyState {
	switch status {
	case model.StatusSafe:
		return model.StateSafe
	case model.StatusDanger:
		return model.StateDanger
	default:
		return model.StateUncertain
	}
}

func describeResult(result *model.AnalysisResult) string {
	return fmt.Sprintf("[%s] %s: %s", result.Mode, result.Status, result.Headline)
}
