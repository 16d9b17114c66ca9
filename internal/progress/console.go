package progress

import (
	"fmt"
	"io"
	"strings"

	"polship/internal/model"
	"polship/internal/util/format"
)

// Console renders progress as plain lines at a caller-selected verbosity:
//   - none: nothing at all
//   - quiet: the final outcome line only
//   - normal: phase markers plus non-debug log lines
//   - verbose: everything, including debug-level log lines
type Console struct {
	w         io.Writer
	verbosity model.Verbosity
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, verbosity model.Verbosity) *Console {
	return &Console{w: w, verbosity: verbosity}
}

func (c *Console) narrates() bool {
	return c.verbosity == model.VerbosityNormal || c.verbosity == model.VerbosityVerbose
}

// PhaseStarted prints a phase start marker.
func (c *Console) PhaseStarted(p Phase) {
	if !c.narrates() {
		return
	}
	fmt.Fprintf(c.w, "→ phase %d: %s\n", p.Seq, p.Name)
}

// PhaseCompleted prints a phase completion marker with elapsed time.
func (c *Console) PhaseCompleted(p PhaseDone) {
	if !c.narrates() {
		return
	}
	if p.Known {
		fmt.Fprintf(c.w, "✓ %s (%s)\n", p.Name, format.HumanDuration(p.Elapsed))
		return
	}
	fmt.Fprintf(c.w, "✓ %s\n", p.Name)
}

// Log prints a raw log line; debug lines only at verbose.
func (c *Console) Log(l Log) {
	if !c.narrates() {
		return
	}
	if strings.EqualFold(l.Level, "debug") && c.verbosity != model.VerbosityVerbose {
		return
	}
	fmt.Fprintf(c.w, "  [%s] %s\n", strings.ToLower(l.Level), l.Message)
}

// Outcome prints the terminal result summary.
func (c *Console) Outcome(o Outcome) {
	if c.verbosity == model.VerbosityNone {
		return
	}
	switch o.Result.Status {
	case model.StatusSuccess:
		fmt.Fprintf(c.w, "Deployment succeeded in %s", c.successDuration(o))
		if o.Result.BundleVersion != "" {
			fmt.Fprintf(c.w, " (bundle %s)", o.Result.BundleVersion)
		}
		fmt.Fprintln(c.w)
		if o.Result.DeploymentURL != "" {
			fmt.Fprintf(c.w, "  %s\n", o.Result.DeploymentURL)
		}
	case model.StatusFailed:
		msg := o.Result.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		fmt.Fprintf(c.w, "Deployment failed: %s\n", msg)
	case model.StatusTimeout:
		fmt.Fprintf(c.w, "Deployment timed out after %s (%d phase(s) observed)\n",
			format.HumanDuration(o.Elapsed), len(o.Result.Phases))
	}
}

// successDuration prefers the server-reported pipeline duration and falls
// back to local session time.
func (c *Console) successDuration(o Outcome) string {
	if o.Result.DurationMs != nil {
		return format.HumanDuration(msToDuration(*o.Result.DurationMs))
	}
	return format.HumanDuration(o.Elapsed)
}

// ParseVerbosity normalizes a verbosity label, defaulting to normal.
func ParseVerbosity(s string) (model.Verbosity, bool) {
	switch model.Verbosity(strings.ToLower(strings.TrimSpace(s))) {
	case model.VerbosityNone:
		return model.VerbosityNone, true
	case model.VerbosityQuiet:
		return model.VerbosityQuiet, true
	case model.VerbosityNormal, "":
		return model.VerbosityNormal, true
	case model.VerbosityVerbose:
		return model.VerbosityVerbose, true
	}
	return model.VerbosityNormal, false
}
