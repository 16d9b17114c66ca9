package poller

import (
	"time"

	"polship/internal/model"
)

// phaseRecord tracks one observed pipeline phase. startedAt is set exactly
// once, at first observation, and never overwritten; durationMs is filled in
// once the next phase (or the terminal boundary) supplies an end instant.
type phaseRecord struct {
	name       string
	startedAt  time.Time
	startValid bool
	durationMs *int64
}

// phaseTracker maintains the ordered list of distinct phases observed so far
// and a timing record per phase. Pipeline phases progress strictly forward
// and never repeat, so a transition signal for an already-known phase is
// silently ignored.
type phaseTracker struct {
	order   []string
	records map[string]*phaseRecord
}

func newPhaseTracker() *phaseTracker {
	return &phaseTracker{records: make(map[string]*phaseRecord)}
}

// observe registers a phase transition at the given raw instant. The return
// value reports whether the phase was new; the previous record is returned
// so the caller can narrate its completion.
func (t *phaseTracker) observe(name, at string) (added bool, prev *phaseRecord) {
	if _, ok := t.records[name]; ok {
		return false, nil
	}

	rec := &phaseRecord{name: name}
	rec.startedAt, rec.startValid = parseInstant(at)

	if n := len(t.order); n > 0 {
		prev = t.records[t.order[n-1]]
		t.close(prev, rec.startedAt, rec.startValid)
	}

	t.order = append(t.order, name)
	t.records[name] = rec
	return true, prev
}

// close fills in a record's duration from an end boundary. A duration
// already computed is never recomputed, and an unparsable boundary on either
// side leaves it unknown.
func (t *phaseTracker) close(rec *phaseRecord, end time.Time, endValid bool) {
	if rec == nil || rec.durationMs != nil {
		return
	}
	if !rec.startValid || !endValid {
		return
	}
	ms := end.Sub(rec.startedAt).Milliseconds()
	rec.durationMs = &ms
}

// phases returns the phase names in first-observed order.
func (t *phaseTracker) phases() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// last returns the most recently observed record, or nil.
func (t *phaseTracker) last() *phaseRecord {
	if len(t.order) == 0 {
		return nil
	}
	return t.records[t.order[len(t.order)-1]]
}

// finalize closes the last open phase against an end boundary and projects
// the timing map. endAt == "" means no boundary is available (timeout), in
// which case the last phase's duration stays unset.
func (t *phaseTracker) finalize(endAt string) map[string]model.PhaseTiming {
	if endAt != "" {
		end, ok := parseInstant(endAt)
		t.close(t.last(), end, ok)
	}

	if len(t.order) == 0 {
		return nil
	}
	timings := make(map[string]model.PhaseTiming, len(t.order))
	for _, name := range t.order {
		rec := t.records[name]
		timing := model.PhaseTiming{DurationMs: rec.durationMs}
		if rec.startValid {
			timing.StartedAt = rec.startedAt
		}
		timings[name] = timing
	}
	return timings
}

// parseInstant parses a producer-assigned ISO-8601 instant. Malformed
// instants yield ok=false rather than an error; downstream timing simply
// stays unknown.
func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.999999999Z0700", s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
