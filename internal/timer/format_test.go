package timer_test

import (
	"testing"

	"github.com/Marki500/taskery-v2/internal/timer"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{599, "09:59"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{7290, "02:01:30"},
		{36000, "10:00:00"},
		{-90, "-01:30"},
		{-3600, "-01:00:00"},
	}
	for _, c := range cases {
		if got := timer.FormatClock(c.seconds); got != c.want {
			t.Errorf("FormatClock(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
