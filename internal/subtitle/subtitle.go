package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/yttd/internal/transcript"
)

// matches HH:MM:SS.mmm, HH:MM:SS,mmm and MM:SS.mmm; hours may be wider than two digits
var timestampPattern = `(?:(\d+):)?(\d{2}):(\d{2})[.,](\d{3})`

var (
	timestampRegex = regexp.MustCompile(`^` + timestampPattern + `$`)
	timingRegex    = regexp.MustCompile(
		`^\s*` + timestampPattern + `\s*-->\s*` + timestampPattern,
	)
)

// Open reads an SRT or WebVTT file, picking the parser from the extension.
func Open(path string) ([]transcript.Cue, transcript.Format, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cues, err := Read(file, format)
	if err != nil {
		return nil, "", err
	}
	return cues, format, nil
}

// subtitle format based on file extension
func FormatFromExtension(path string) (transcript.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return transcript.FormatSRT, nil
	case ".vtt":
		return transcript.FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// ParseTimestamp converts an SRT or WebVTT timestamp to seconds.
func ParseTimestamp(s string) (float64, error) {
	matches := timestampRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return timestampSeconds(matches[1:5])
}

// groups are hours (optional), minutes, seconds, millis
func timestampSeconds(groups []string) (float64, error) {
	var fields [4]int
	for i, g := range groups {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, err
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf(
			"minutes and seconds must be below 60, got %02d:%02d",
			fields[1],
			fields[2],
		)
	}

	totalMillis := int64(fields[0])*3600000 +
		int64(fields[1])*60000 +
		int64(fields[2])*1000 +
		int64(fields[3])
	return float64(totalMillis) / 1000, nil
}

// parses "start --> end" at the beginning of line
func parseTiming(line string) (start, end float64, ok bool, err error) {
	matches := timingRegex.FindStringSubmatch(line)
	if matches == nil {
		return 0, 0, false, nil
	}
	start, err = timestampSeconds(matches[1:5])
	if err != nil {
		return 0, 0, true, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err = timestampSeconds(matches[5:9])
	if err != nil {
		return 0, 0, true, fmt.Errorf("invalid end timestamp: %w", err)
	}
	return start, end, true, nil
}
