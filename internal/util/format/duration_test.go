package format

import (
	"testing"
	"time"
)

func TestHumanDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{-3 * time.Second, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{3200 * time.Millisecond, "3.2s"},
		{59*time.Second + 949*time.Millisecond, "59.9s"},
		{64 * time.Second, "1m04s"},
		{10*time.Minute + 30*time.Second, "10m30s"},
		{62 * time.Minute, "1h02m"},
	}
	for _, c := range cases {
		if got := HumanDuration(c.in); got != c.want {
			t.Errorf("HumanDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
