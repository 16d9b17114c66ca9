package progress

import (
	"time"

	"polship/internal/model"
)

// Phase conveys the start of a newly observed pipeline phase.
type Phase struct {
	Name      string
	Seq       int // position in first-observed order, starting at 1
	StartedAt time.Time
}

// PhaseDone conveys completion of a phase, inferred when the next phase
// starts or the run reaches a terminal entry. Known is false when either
// boundary timestamp was unparsable.
type PhaseDone struct {
	Name    string
	Elapsed time.Duration
	Known   bool
}

// Log is one raw log line from the stream, passed through for narration.
type Log struct {
	Level   string
	Message string
}

// Outcome is emitted exactly once per poll session.
type Outcome struct {
	Result  model.PollResult
	Elapsed time.Duration // local wall-clock session time
}

// Reporter is implemented by the console printer and the TUI. It owns no
// decision logic; the poller emits every event regardless of verbosity and
// the reporter decides what to show.
type Reporter interface {
	PhaseStarted(p Phase)
	PhaseCompleted(p PhaseDone)
	Log(l Log)
	Outcome(o Outcome)
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Discard is a Reporter that drops every event.
type Discard struct{}

func (Discard) PhaseStarted(Phase)       {}
func (Discard) PhaseCompleted(PhaseDone) {}
func (Discard) Log(Log)                  {}
func (Discard) Outcome(Outcome)          {}
