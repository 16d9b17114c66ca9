package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"polship/internal/model"
)

func drive(c *Console) {
	c.PhaseStarted(Phase{Name: "plan", Seq: 1})
	c.Log(Log{Level: "info", Message: "resolving bundle"})
	c.Log(Log{Level: "DEBUG", Message: "cache miss"})
	c.PhaseCompleted(PhaseDone{Name: "plan", Elapsed: 8 * time.Second, Known: true})
	c.Outcome(Outcome{
		Result:  model.PollResult{Status: model.StatusSuccess, BundleVersion: "v7"},
		Elapsed: 26 * time.Second,
	})
}

func TestConsoleVerbosityNone(t *testing.T) {
	var buf bytes.Buffer
	drive(NewConsole(&buf, model.VerbosityNone))
	if buf.Len() != 0 {
		t.Errorf("verbosity none produced output: %q", buf.String())
	}
}

func TestConsoleVerbosityQuiet(t *testing.T) {
	var buf bytes.Buffer
	drive(NewConsole(&buf, model.VerbosityQuiet))
	out := buf.String()
	if strings.Contains(out, "phase") || strings.Contains(out, "resolving") {
		t.Errorf("quiet leaked narration: %q", out)
	}
	if !strings.Contains(out, "Deployment succeeded") {
		t.Errorf("quiet missing outcome line: %q", out)
	}
}

func TestConsoleVerbosityNormal(t *testing.T) {
	var buf bytes.Buffer
	drive(NewConsole(&buf, model.VerbosityNormal))
	out := buf.String()
	for _, want := range []string{
		"→ phase 1: plan",
		"[info] resolving bundle",
		"✓ plan (8.0s)",
		"Deployment succeeded in 26.0s (bundle v7)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("normal output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cache miss") {
		t.Errorf("normal output includes debug line:\n%s", out)
	}
}

func TestConsoleVerbosityVerbose(t *testing.T) {
	var buf bytes.Buffer
	drive(NewConsole(&buf, model.VerbosityVerbose))
	if !strings.Contains(buf.String(), "[debug] cache miss") {
		t.Errorf("verbose output missing debug line:\n%s", buf.String())
	}
}

func TestConsoleSuccessPrefersServerDuration(t *testing.T) {
	var buf bytes.Buffer
	ms := int64(4200)
	NewConsole(&buf, model.VerbosityQuiet).Outcome(Outcome{
		Result:  model.PollResult{Status: model.StatusSuccess, DurationMs: &ms},
		Elapsed: 90 * time.Second,
	})
	if !strings.Contains(buf.String(), "4.2s") {
		t.Errorf("summary did not use server duration: %q", buf.String())
	}
}

func TestConsoleFailureAndTimeoutLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, model.VerbosityQuiet)

	c.Outcome(Outcome{Result: model.PollResult{
		Status:       model.StatusFailed,
		ErrorMessage: "gateway rejected bundle",
	}})
	c.Outcome(Outcome{
		Result:  model.PollResult{Status: model.StatusTimeout, Phases: []string{"plan", "apply"}},
		Elapsed: 10 * time.Minute,
	})

	out := buf.String()
	if !strings.Contains(out, "Deployment failed: gateway rejected bundle") {
		t.Errorf("missing failure line: %q", out)
	}
	if !strings.Contains(out, "timed out after 10m00s (2 phase(s) observed)") {
		t.Errorf("missing timeout line: %q", out)
	}
}

func TestParseVerbosity(t *testing.T) {
	cases := []struct {
		in   string
		want model.Verbosity
		ok   bool
	}{
		{"none", model.VerbosityNone, true},
		{"quiet", model.VerbosityQuiet, true},
		{"normal", model.VerbosityNormal, true},
		{"verbose", model.VerbosityVerbose, true},
		{" Verbose ", model.VerbosityVerbose, true},
		{"", model.VerbosityNormal, true},
		{"loud", model.VerbosityNormal, false},
	}
	for _, tc := range cases {
		got, ok := ParseVerbosity(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseVerbosity(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
