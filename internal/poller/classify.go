package poller

import (
	"strings"

	"polship/internal/model"
)

// outcomeKind is the per-entry classification verdict.
type outcomeKind int

const (
	outcomeIgnore outcomeKind = iota
	outcomePhase
	outcomeSuccess
	outcomeFailure
)

// outcome is the tagged variant produced by classify: exactly one kind, with
// the fields for that kind populated.
type outcome struct {
	kind outcomeKind

	// at is the entry's effective timestamp, used as a phase start or as the
	// phase tracker's end boundary on terminal entries.
	at string

	phase string // outcomePhase

	message string // outcomeFailure

	// outcomeSuccess payload
	durationMs    *int64
	bundleVersion string
	deploymentURL string
}

// fallbackFailureMessage is reported when the pipeline signals failure
// without supplying a message of its own.
const fallbackFailureMessage = "Deployment failed without error message"

// classify decides what a single not-yet-seen log entry represents. First
// match wins:
//
//  1. error severity, regardless of any action — the severity check models
//     phase-agnostic errors and overrides even a success action
//  2. phase transition with a non-empty phase name
//  3. pipeline completion
//  4. pipeline failure/error actions
//  5. everything else is narration only
func classify(e model.LogEntry) outcome {
	md := e.Metadata

	if strings.EqualFold(e.Level, "error") {
		return outcome{
			kind:    outcomeFailure,
			at:      e.EffectiveTimestamp(),
			message: errorMessage(e),
		}
	}

	if md == nil {
		return outcome{kind: outcomeIgnore}
	}

	switch md.Action {
	case model.ActionPhaseChange:
		if md.Details == nil || md.Details.Phase == "" {
			return outcome{kind: outcomeIgnore}
		}
		return outcome{
			kind:  outcomePhase,
			at:    e.EffectiveTimestamp(),
			phase: md.Details.Phase,
		}

	case model.ActionPipelineComplete:
		out := outcome{
			kind:       outcomeSuccess,
			at:         e.EffectiveTimestamp(),
			durationMs: md.DurationMs,
		}
		if md.Details != nil {
			out.bundleVersion = md.Details.BundleVersion
			out.deploymentURL = md.Details.DeploymentURL
		}
		return out

	case model.ActionPipelineFailed, model.ActionPipelineError:
		msg := md.Message
		if msg == "" {
			msg = fallbackFailureMessage
		}
		return outcome{
			kind:    outcomeFailure,
			at:      e.EffectiveTimestamp(),
			message: msg,
		}
	}

	return outcome{kind: outcomeIgnore}
}

// errorMessage picks the failure message for an error-severity entry:
// metadata.error, then metadata.message, then the entry's own message.
func errorMessage(e model.LogEntry) string {
	if e.Metadata != nil {
		if e.Metadata.Error != "" {
			return e.Metadata.Error
		}
		if e.Metadata.Message != "" {
			return e.Metadata.Message
		}
	}
	return e.Message
}
