package poller

import (
	"strings"
	"testing"

	"polship/internal/model"
)

func TestDedupKeyStableAcrossFetches(t *testing.T) {
	entry := model.LogEntry{
		Timestamp: "2026-03-01T10:00:00Z",
		Level:     "info",
		Message:   "synchronizing bundle",
		Metadata:  &model.LogMetadata{Action: model.ActionPhaseChange},
	}
	refetched := model.LogEntry{
		Timestamp: "2026-03-01T10:00:00Z",
		Level:     "info",
		Message:   "synchronizing bundle",
		Metadata:  &model.LogMetadata{Action: model.ActionPhaseChange},
	}

	d := newDedup()
	if d.key(entry) != d.key(refetched) {
		t.Errorf("same underlying entry produced different keys")
	}
}

func TestDedupDiscriminatesIdenticalPrefixes(t *testing.T) {
	// Messages share a long identical prefix; length and tail must still
	// tell them apart.
	prefix := strings.Repeat("x", headTailLen)
	a := model.LogEntry{Timestamp: "2026-03-01T10:00:00Z", Message: prefix + " applying bundle v1"}
	b := model.LogEntry{Timestamp: "2026-03-01T10:00:00Z", Message: prefix + " applying bundle v2"}

	d := newDedup()
	if d.key(a) == d.key(b) {
		t.Errorf("distinct entries collapsed to one key")
	}

	// Same text but different action must differ too.
	c := a
	c.Metadata = &model.LogMetadata{Action: model.ActionPipelineComplete}
	if d.key(a) == d.key(c) {
		t.Errorf("entries with different actions collapsed to one key")
	}
}

func TestDedupMarkIsIdempotent(t *testing.T) {
	entry := model.LogEntry{Timestamp: "2026-03-01T10:00:00Z", Message: "hello"}

	d := newDedup()
	key := d.key(entry)
	if d.isSeen(key) {
		t.Fatalf("fresh entry reported as seen")
	}
	d.mark(key)
	d.mark(key)
	if !d.isSeen(key) {
		t.Errorf("marked entry not reported as seen")
	}
	if d.size() != 1 {
		t.Errorf("seen set size = %d, want 1", d.size())
	}
}
