package timer

import "fmt"

// FormatClock renders seconds as HH:MM:SS, or MM:SS under an hour.
// Negative totals (possible after manual corrections) keep a leading minus.
func FormatClock(totalSeconds int64) string {
	neg := totalSeconds < 0
	if neg {
		totalSeconds = -totalSeconds
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var s string
	if hours > 0 {
		s = fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	} else {
		s = fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	if neg {
		return "-" + s
	}
	return s
}
