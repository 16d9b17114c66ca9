package poller

import (
	"strconv"
	"strings"

	"polship/internal/model"
)

// dedup recognizes log entries that were already processed in an earlier
// fetch window. It only ever grows: an entry is never "unseen" once marked,
// and the set lives exactly as long as one poll session.
type dedup struct {
	seen map[string]struct{}
}

func newDedup() *dedup {
	return &dedup{seen: make(map[string]struct{})}
}

// headTailLen bounds how much of the message body participates in the
// fingerprint. Length plus both ends discriminates entries with identical
// truncated prefixes without hashing whole bodies.
const headTailLen = 32

// key derives a stable fingerprint for an entry from fields that repeat
// identically across overlapping fetches: timestamp, a cheap message digest,
// and the metadata action.
func (d *dedup) key(e model.LogEntry) string {
	action := ""
	if e.Metadata != nil {
		action = e.Metadata.Action
	}
	var b strings.Builder
	b.WriteString(e.Timestamp)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(e.Message)))
	b.WriteByte('|')
	b.WriteString(head(e.Message))
	b.WriteByte('|')
	b.WriteString(tail(e.Message))
	b.WriteByte('|')
	b.WriteString(action)
	return b.String()
}

func (d *dedup) isSeen(key string) bool {
	_, ok := d.seen[key]
	return ok
}

func (d *dedup) mark(key string) {
	d.seen[key] = struct{}{}
}

func (d *dedup) size() int {
	return len(d.seen)
}

func head(s string) string {
	if len(s) <= headTailLen {
		return s
	}
	return s[:headTailLen]
}

func tail(s string) string {
	if len(s) <= headTailLen {
		return s
	}
	return s[len(s)-headTailLen:]
}
