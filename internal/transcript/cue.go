package transcript

import (
	"errors"
	"fmt"
	"math"
)

// single timed caption segment, times in seconds
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ErrEmptyInput is returned when a cue list has no entries.
var ErrEmptyInput = errors.New("transcript: empty cue list")

// InvalidCueError reports the first cue that breaks the ordering or timing
// invariants of a cue list.
type InvalidCueError struct {
	Index  int
	Cue    Cue
	Reason string
}

func (e *InvalidCueError) Error() string {
	return fmt.Sprintf(
		"transcript: invalid cue %d (%g --> %g): %s",
		e.Index,
		e.Cue.Start,
		e.Cue.End,
		e.Reason,
	)
}

// UnsupportedFormatError is returned for output formats outside vtt, srt,
// text and json.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("transcript: unsupported format %q", e.Format)
}

// Validate checks every cue and returns the first violation as an
// *InvalidCueError. An empty list is valid here; Render decides what to do
// with it.
func Validate(cues []Cue) error {
	for i, c := range cues {
		var reason string
		switch {
		case !isFinite(c.Start) || !isFinite(c.End):
			reason = "non-finite time"
		case c.Start < 0:
			reason = "negative start"
		case c.End < c.Start:
			reason = "end before start"
		case i > 0 && c.Start < cues[i-1].Start:
			reason = "start before previous cue"
		}
		if reason != "" {
			return &InvalidCueError{Index: i, Cue: c, Reason: reason}
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
