package ui

import (
	"time"

	"polship/internal/progress"
)

type phaseStartedMsg struct {
	P progress.Phase
}

type phaseDoneMsg struct {
	P progress.PhaseDone
}

type logMsg struct {
	L progress.Log
}

type outcomeMsg struct {
	O progress.Outcome
}

type pollFailedMsg struct {
	Err error
}

type tickMsg time.Time
