package subtitle

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/yttd/internal/transcript"
)

// Reflow reshapes cues for on-screen display: long cues are split into
// several shorter ones and text is broken into balanced lines.
type Reflow struct {
	MaxCharsPerLine int
	MaxLinesPerCue  int
	MaxDuration     float64 // seconds, 0 disables duration splits
}

func DefaultReflow() Reflow {
	return Reflow{
		MaxCharsPerLine: 42, // standard subtitle line length
		MaxLinesPerCue:  2,  // most players show two lines
		MaxDuration:     7,
	}
}

// Apply returns a new cue list; the input is not modified. Split cues share
// the original time span in proportion to their word count. Overlapping input
// can push a split past the next cue, so the output is re-ordered by start.
func (r Reflow) Apply(cues []transcript.Cue) []transcript.Cue {
	if r.MaxCharsPerLine <= 0 {
		return append([]transcript.Cue(nil), cues...)
	}
	if r.MaxLinesPerCue <= 0 {
		r.MaxLinesPerCue = 1
	}

	out := make([]transcript.Cue, 0, len(cues))
	for _, cue := range cues {
		text := strings.Join(strings.Fields(cue.Text), " ")
		if text == "" {
			continue
		}
		if !r.needsSplit(text, cue.End-cue.Start) {
			out = append(out, transcript.Cue{
				Start: cue.Start,
				End:   cue.End,
				Text:  r.wrap(text),
			})
			continue
		}
		out = append(out, r.split(cue, text)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

func (r Reflow) maxChars() int {
	return r.MaxCharsPerLine * r.MaxLinesPerCue
}

func (r Reflow) needsSplit(text string, duration float64) bool {
	if utf8.RuneCountInString(text) > r.maxChars() {
		return true
	}
	return r.MaxDuration > 0 && duration > r.MaxDuration
}

func (r Reflow) split(cue transcript.Cue, text string) []transcript.Cue {
	words := strings.Fields(text)
	totalChars := utf8.RuneCountInString(text)

	numSplits := (totalChars + r.maxChars() - 1) / r.maxChars()
	if r.MaxDuration > 0 {
		if d := int((cue.End-cue.Start)/r.MaxDuration) + 1; d > numSplits {
			numSplits = d
		}
	}
	numSplits = max(1, min(numSplits, len(words)))

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	duration := cue.End - cue.Start
	totalWords := len(words)

	var (
		out      []transcript.Cue
		consumed int
	)
	start := cue.Start
	for len(words) > 0 {
		n := min(wordsPerSplit, len(words))
		chunk := words[:n]
		words = words[n:]
		consumed += n

		end := cue.Start + duration*float64(consumed)/float64(totalWords)
		// last chunk ends exactly at the original end time
		if len(words) == 0 {
			end = cue.End
		}

		out = append(out, transcript.Cue{
			Start: start,
			End:   end,
			Text:  r.wrap(strings.Join(chunk, " ")),
		})
		start = end
	}
	return out
}

// breaks text into two lines at the word boundary closest to the middle
func (r Reflow) wrap(text string) string {
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= r.MaxCharsPerLine || r.MaxLinesPerCue < 2 {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := currentLen - middle
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
}
