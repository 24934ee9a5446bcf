package model

import "time"

// Config holds all fieldscope configuration.
type Config struct {
	Guard    GuardConfig    `yaml:"guard" mapstructure:"guard"`
	Vision   VisionConfig   `yaml:"vision" mapstructure:"vision"`
	Camera   CameraConfig   `yaml:"camera" mapstructure:"camera"`
	Voice    VoiceConfig    `yaml:"voice" mapstructure:"voice"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Identity IdentityConfig `yaml:"identity" mapstructure:"identity"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
}

// GuardConfig tunes outbound-request admission control.
type GuardConfig struct {
	// Cooldown is the minimum interval between admitted requests.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`

	// PerMinuteCap is the maximum number of admissions within any trailing
	// 60-second window.
	PerMinuteCap int `yaml:"per_minute_cap" mapstructure:"per_minute_cap"`
}

// VisionConfig selects and tunes the inference provider.
type VisionConfig struct {
	// Provider name: "openai" or "" (disabled; every request is served by
	// the fallback generator).
	Provider string `yaml:"provider" mapstructure:"provider"`

	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CameraConfig points at the frame spool directory written by the external
// capture daemon.
type CameraConfig struct {
	SpoolDir      string `yaml:"spool_dir" mapstructure:"spool_dir"`
	MaxFrameBytes int64  `yaml:"max_frame_bytes" mapstructure:"max_frame_bytes"`
}

// VoiceConfig tunes the best-effort TTS sink.
type VoiceConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Voice          string `yaml:"voice" mapstructure:"voice"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// StoreConfig tunes the durable event store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// IdentityConfig tunes operator identity resolution.
type IdentityConfig struct {
	// OperatorEnv names the environment variable holding the operator id.
	OperatorEnv string `yaml:"operator_env" mapstructure:"operator_env"`

	// TTLMinutes bounds how long a resolved identity is cached.
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// SessionConfig tunes orchestrator behavior.
type SessionConfig struct {
	// DegradedThreshold is the number of consecutive fallback substitutions
	// after which the session announces degraded mode.
	DegradedThreshold int `yaml:"degraded_threshold" mapstructure:"degraded_threshold"`
}

// ReportConfig tunes incident report assembly.
type ReportConfig struct {
	// MaxEntries caps how many recent log entries a report includes.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Guard: GuardConfig{
			Cooldown:     8 * time.Second,
			PerMinuteCap: 6,
		},
		Vision: VisionConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
			MaxTokens:      1000,
		},
		Camera: CameraConfig{
			SpoolDir:      "/var/spool/fieldscope/frames",
			MaxFrameBytes: 8_000_000,
		},
		Voice: VoiceConfig{
			Enabled:        false,
			Voice:          "default",
			TimeoutSeconds: 5,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "fieldscope.db",
		},
		Identity: IdentityConfig{
			OperatorEnv: "FIELDSCOPE_OPERATOR_ID",
			TTLMinutes:  15,
		},
		Session: SessionConfig{
			DegradedThreshold: 3,
		},
		Report: ReportConfig{
			MaxEntries: 25,
		},
	}
}
