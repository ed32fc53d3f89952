package transcript

import (
	"fmt"
	"math"
)

// fractional-seconds separator used by FormatTimestamp
type Style int

const (
	// StyleDot renders 00:00:00.000 (WebVTT).
	StyleDot Style = iota
	// StyleComma renders 00:00:00,000 (SubRip).
	StyleComma
)

func (s Style) separator() byte {
	if s == StyleComma {
		return ','
	}
	return '.'
}

// FormatTimestamp renders seconds as HH:MM:SS<sep>mmm. The value is rounded
// to the nearest millisecond first so binary float error cannot drop a
// millisecond. Hours are padded to two digits but never truncated.
// Negative and non-finite input is clamped to zero.
func FormatTimestamp(seconds float64, style Style) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))

	millis := total % 1000
	totalSeconds := total / 1000
	secs := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600

	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		hours, minutes, secs, style.separator(), millis)
}
