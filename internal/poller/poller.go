// Package poller turns the deployment pipeline's noisy, overlapping log
// stream into a deterministic terminal outcome while tracking phase
// transitions and their durations.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"polship/internal/api"
	"polship/internal/logger"
	"polship/internal/model"
	"polship/internal/progress"
)

// LogFetcher fetches one batch of log entries for a run. Implementations may
// fail transiently (network, 5xx) or permanently (authorization).
type LogFetcher interface {
	FetchLogs(ctx context.Context, entityID, runID string, limit int) ([]model.LogEntry, error)
}

// Defaults for the poll loop configuration.
const (
	DefaultPollDelay = 2 * time.Second
	DefaultLogLimit  = 200
	DefaultTimeout   = 10 * time.Minute
)

// Poller drives fetch → dedup → classify cycles against a wall-clock
// deadline. One Poller value serves one poll session; its dedup set and
// phase tracker are session-scoped and never shared.
type Poller struct {
	fetcher   LogFetcher
	timeout   time.Duration
	pollDelay time.Duration
	logLimit  int
	reporter  progress.Reporter
	log       *logrus.Entry

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Poller.
type Option func(*Poller)

// WithTimeout sets the absolute wall-clock budget for the session.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		p.timeout = d
	}
}

// WithPollDelay sets the fixed delay between fetches. The delay is not
// adaptive; transient fetch failures wait the same fixed interval.
func WithPollDelay(d time.Duration) Option {
	return func(p *Poller) {
		p.pollDelay = d
	}
}

// WithLogLimit sets the maximum entries requested per fetch.
func WithLogLimit(n int) Option {
	return func(p *Poller) {
		p.logLimit = n
	}
}

// WithReporter attaches a progress reporter (console or TUI).
func WithReporter(r progress.Reporter) Option {
	return func(p *Poller) {
		p.reporter = r
	}
}

// WithClock injects the wall-clock source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// WithSleep injects the inter-poll sleep (useful for testing).
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		p.sleep = sleep
	}
}

// New constructs a Poller with the provided options, applying defaults for
// anything unset.
func New(fetcher LogFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:   fetcher,
		timeout:   DefaultTimeout,
		pollDelay: DefaultPollDelay,
		logLimit:  DefaultLogLimit,
	}
	for _, o := range opts {
		o(p)
	}
	if p.reporter == nil {
		p.reporter = progress.Discard{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	p.log = logger.WithField("component", "poller")
	return p
}

// Wait polls the run's log stream until it reaches a terminal outcome or the
// deadline elapses. All four outcome classes (success, domain failure,
// permanent authorization failure, timeout) come back as a PollResult; the
// only error return is context cancellation.
func (p *Poller) Wait(ctx context.Context, entityID, runID string) (model.PollResult, error) {
	seen := newDedup()
	tracker := newPhaseTracker()
	start := p.now()

	for {
		if err := ctx.Err(); err != nil {
			return model.PollResult{}, err
		}

		if p.now().Sub(start) >= p.timeout {
			return p.finish(tracker, start, model.PollResult{
				Status: model.StatusTimeout,
			}, ""), nil
		}

		entries, err := p.fetcher.FetchLogs(ctx, entityID, runID, p.logLimit)
		if err != nil {
			if api.IsPermissionDenied(err) {
				return p.finish(tracker, start, model.PollResult{
					Status:       model.StatusFailed,
					ErrorMessage: permissionDeniedMessage(err),
				}, ""), nil
			}
			p.log.WithField("run_id", runID).Warnf("log fetch failed, retrying: %v", err)
		} else {
			if result, terminal := p.processBatch(seen, tracker, start, entries); terminal {
				return result, nil
			}
		}

		if err := p.sleep(ctx, p.pollDelay); err != nil {
			return model.PollResult{}, err
		}
	}
}

// processBatch runs each not-yet-seen entry through the classifier in
// arrival order. The first terminal entry ends the session; entries after it
// in the same batch are never processed.
func (p *Poller) processBatch(seen *dedup, tracker *phaseTracker, start time.Time, entries []model.LogEntry) (model.PollResult, bool) {
	for _, entry := range entries {
		key := seen.key(entry)
		if seen.isSeen(key) {
			continue
		}
		seen.mark(key)

		out := classify(entry)
		switch out.kind {
		case outcomePhase:
			p.observePhase(tracker, out)

		case outcomeSuccess:
			return p.finish(tracker, start, model.PollResult{
				Status:        model.StatusSuccess,
				DurationMs:    out.durationMs,
				BundleVersion: out.bundleVersion,
				DeploymentURL: out.deploymentURL,
			}, out.at), true

		case outcomeFailure:
			return p.finish(tracker, start, model.PollResult{
				Status:       model.StatusFailed,
				ErrorMessage: out.message,
			}, out.at), true

		default:
			p.reporter.Log(progress.Log{Level: entry.Level, Message: entry.Message})
		}
	}
	return model.PollResult{}, false
}

// observePhase folds a phase transition into the tracker and narrates it.
// Repeated signals for a known phase are dropped by the tracker.
func (p *Poller) observePhase(tracker *phaseTracker, out outcome) {
	added, prev := tracker.observe(out.phase, out.at)
	if !added {
		return
	}
	if prev != nil {
		p.reporter.PhaseCompleted(phaseDone(prev))
	}
	rec := tracker.last()
	p.reporter.PhaseStarted(progress.Phase{
		Name:      out.phase,
		Seq:       len(tracker.phases()),
		StartedAt: rec.startedAt,
	})
}

// finish finalizes phase timings against the terminal entry's effective
// timestamp (empty on timeout and authorization failures), fills in the
// phase projection, and emits the closing reporter events.
func (p *Poller) finish(tracker *phaseTracker, start time.Time, result model.PollResult, endAt string) model.PollResult {
	result.PhaseTimings = tracker.finalize(endAt)
	result.Phases = tracker.phases()

	if last := tracker.last(); last != nil && endAt != "" {
		p.reporter.PhaseCompleted(phaseDone(last))
	}
	p.reporter.Outcome(progress.Outcome{
		Result:  result,
		Elapsed: p.now().Sub(start),
	})
	return result
}

func phaseDone(rec *phaseRecord) progress.PhaseDone {
	done := progress.PhaseDone{Name: rec.name}
	if rec.durationMs != nil {
		done.Elapsed = time.Duration(*rec.durationMs) * time.Millisecond
		done.Known = true
	}
	return done
}

// permissionDeniedMessage turns a permanent authorization fetch failure into
// a remediation-oriented message for the final result.
func permissionDeniedMessage(err error) string {
	return fmt.Sprintf(
		"cannot read deployment logs: %v. Grant the token the logs:read scope for this entity (or re-authenticate with an account that has it) and run the command again.",
		err)
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
