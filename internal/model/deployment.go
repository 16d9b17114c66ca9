package model

import "time"

// Verbosity controls what the progress reporter narrates. It never changes
// what the poller decides.
type Verbosity string

const (
	VerbosityNone    Verbosity = "none"
	VerbosityQuiet   Verbosity = "quiet"
	VerbosityNormal  Verbosity = "normal"
	VerbosityVerbose Verbosity = "verbose"
)

// Metadata action discriminators emitted by the pipeline log stream.
const (
	ActionPhaseChange      = "report_phase_change_success"
	ActionPipelineComplete = "pipeline_complete"
	ActionPipelineFailed   = "pipeline_failed"
	ActionPipelineError    = "pipeline_error"
)

// LogEntry is one observation from the remote deployment log stream.
// Timestamps are producer-assigned and not guaranteed monotonic.
type LogEntry struct {
	Timestamp string       `json:"timestamp"`
	Level     string       `json:"level"`
	Message   string       `json:"message"`
	Metadata  *LogMetadata `json:"metadata,omitempty"`
}

// LogMetadata is the optional structured payload carried by a log entry.
// Action selects which of the remaining fields are meaningful.
type LogMetadata struct {
	Action     string         `json:"action,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs *int64         `json:"duration_ms,omitempty"`
	Details    *ActionDetails `json:"details,omitempty"`
}

// ActionDetails carries action-specific fields.
type ActionDetails struct {
	Phase         string `json:"phase,omitempty"`
	BundleVersion string `json:"bundle_version,omitempty"`
	DeploymentURL string `json:"deployment_url,omitempty"`
}

// EffectiveTimestamp returns the metadata timestamp when present, else the
// entry's own timestamp.
func (e LogEntry) EffectiveTimestamp() string {
	if e.Metadata != nil && e.Metadata.Timestamp != "" {
		return e.Metadata.Timestamp
	}
	return e.Timestamp
}

// PollStatus is the terminal outcome of one poll session.
type PollStatus string

const (
	StatusSuccess PollStatus = "success"
	StatusFailed  PollStatus = "failed"
	StatusTimeout PollStatus = "timeout"
)

// PhaseTiming records when a phase was first observed and, once an end
// boundary is knowable, how long it ran. DurationMs stays nil when either
// boundary was missing or unparsable.
type PhaseTiming struct {
	StartedAt  time.Time
	DurationMs *int64
}

// PollResult is constructed exactly once, when a terminal condition is
// detected or the deadline elapses, and is immutable afterwards.
type PollResult struct {
	Status        PollStatus
	DurationMs    *int64 // server-reported, success only
	ErrorMessage  string // failure only
	Phases        []string
	PhaseTimings  map[string]PhaseTiming
	BundleVersion string
	DeploymentURL string
}

// Options holds user-configurable runtime options as parsed from flags,
// environment, and config file.
type Options struct {
	APIURL         string
	Token          string
	EntityID       string
	TimeoutMinutes int
	PollDelayMs    int
	LogLimit       int
	Verbosity      Verbosity
	Debug          bool // logrus debug logging to stderr
	NoUI           bool // disable TUI when true
}
