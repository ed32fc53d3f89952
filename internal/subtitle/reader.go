package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mgpai22/yttd/internal/transcript"
)

// Read parses SRT or WebVTT content into cues. Cue identifiers and SRT
// indices are discarded; order is positional.
func Read(r io.Reader, format transcript.Format) ([]transcript.Cue, error) {
	switch format {
	case transcript.FormatSRT:
		return readBlocks(r, false)
	case transcript.FormatVTT:
		return readBlocks(r, true)
	default:
		return nil, &transcript.UnsupportedFormatError{Format: string(format)}
	}
}

// SRT and WebVTT share the block layout: optional identifier line, timing
// line, text lines, blank separator.
func readBlocks(r io.Reader, vtt bool) ([]transcript.Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues      []transcript.Cue
		current   *transcript.Cue
		textLines []string
		lineNum   int
		skipBlock bool
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if vtt {
				if !strings.HasPrefix(line, "WEBVTT") {
					return nil, fmt.Errorf("missing WEBVTT header")
				}
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}

		if vtt && current == nil && isVTTMetadataBlock(trimmed) {
			skipBlock = true
			continue
		}

		start, end, isTiming, err := parseTiming(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if isTiming {
			flush()
			current = &transcript.Cue{Start: start, End: end}
			continue
		}

		// identifier lines before the timing line are dropped
		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading subtitle content: %w", err)
	}

	return cues, nil
}

func isVTTMetadataBlock(line string) bool {
	return line == "NOTE" || strings.HasPrefix(line, "NOTE ") ||
		line == "STYLE" || line == "REGION"
}
