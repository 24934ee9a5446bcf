package model

import "time"

// Status classifies what the analyzer concluded from a frame.
type Status string

const (
	StatusSafe      Status = "SAFE"
	StatusDanger    Status = "DANGER"
	StatusUncertain Status = "UNCERTAIN"
)

// ValidStatus reports whether s is one of the three known classifications.
func ValidStatus(s Status) bool {
	switch s {
	case StatusSafe, StatusDanger, StatusUncertain:
		return true
	}
	return false
}

// OperatingMode is the intent of an analysis request.
type OperatingMode string

const (
	ModeSafetyCheck OperatingMode = "safety_check"
	ModeDiagnosis   OperatingMode = "diagnosis"
	ModeRepairGuide OperatingMode = "repair_guide"
)

// ValidMode reports whether m is a known operating mode.
func ValidMode(m OperatingMode) bool {
	switch m {
	case ModeSafetyCheck, ModeDiagnosis, ModeRepairGuide:
		return true
	}
	return false
}

// SafetyState is the single authoritative classification governing which
// operating modes are currently permitted.
type SafetyState string

const (
	StateIdle      SafetyState = "IDLE"
	StateScanning  SafetyState = "SCANNING"
	StateDanger    SafetyState = "DANGER"
	StateSafe      SafetyState = "SAFE"
	StateUncertain SafetyState = "UNCERTAIN"
)

// AnalysisResult is the canonical shape of every classification, real or
// synthetic. The wire schema (json tags) is what the inference service is
// instructed to produce; the unexported-tag fields are session bookkeeping.
type AnalysisResult struct {
	Status         Status   `json:"status"`
	Headline       string   `json:"headline"`
	Reasoning      string   `json:"reasoning"`
	ActionRequired string   `json:"action_required"`
	RepairSteps    []string `json:"repair_steps,omitempty"`

	// Synthetic marks fallback-generated results. Synthetic results drive
	// the state machine and the log like genuine ones but are never
	// forwarded to the durable store.
	Synthetic  bool          `json:"-"`
	Mode       OperatingMode `json:"-"`
	ReceivedAt time.Time     `json:"-"`
}

// LogSource identifies who produced a log entry.
type LogSource string

const (
	SourceSystem   LogSource = "SYSTEM"
	SourceError    LogSource = "ERROR"
	SourceAnalyzer LogSource = "ANALYZER"
)

// LogEntry is one timestamped line in the session event log.
type LogEntry struct {
	Source    LogSource `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisRecord is the persisted form of a genuine (non-synthetic) result.
type AnalysisRecord struct {
	ID             string
	SessionID      string
	OperatorID     string
	Mode           OperatingMode
	Status         Status
	Headline       string
	Reasoning      string
	ActionRequired string
	RepairSteps    []string
	CreatedAt      time.Time
}
