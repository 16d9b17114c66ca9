package format

import (
	"strconv"
	"time"
)

// HumanDuration converts a duration into a short human-readable string
// suitable for phase narration (e.g., "850ms", "3.2s", "1m04s", "1h02m").
func HumanDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Second:
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	case d < time.Minute:
		return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
	case d < time.Hour:
		m := int64(d / time.Minute)
		s := int64(d/time.Second) % 60
		return strconv.FormatInt(m, 10) + "m" + pad2(s) + "s"
	default:
		h := int64(d / time.Hour)
		m := int64(d/time.Minute) % 60
		return strconv.FormatInt(h, 10) + "h" + pad2(m) + "m"
	}
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
