package youtube

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mgpai22/yttd/internal/transcript"
)

// timed-text payload variant requested from a track's base URL
type TimedTextFormat string

const (
	// legacy <transcript><text start dur> document, times in seconds
	TimedTextXML TimedTextFormat = ""
	// <timedtext format="3"><body><p t d>, times in milliseconds
	TimedTextSrv3 TimedTextFormat = "srv3"
	// JSON events with tStartMs/dDurationMs and utf8 segments
	TimedTextJSON3 TimedTextFormat = "json3"
)

var ErrUnknownTimedText = errors.New("youtube: unrecognized timed text payload")

var (
	// styling tags only, with name=value attributes; "<b and c>" is text
	markupRegex = regexp.MustCompile(
		`(?i)</?(?:font|i|b|u|c|ruby|rt)(?:\.[\w.-]+)?` +
			`(?:\s+[\w-]+=(?:"[^"<>]*"|'[^'<>]*'|[^\s"'<>]+))*\s*/?>`,
	)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// ParseTimedText detects the payload variant and converts it to cues.
// Text is entity-decoded and stripped of markup; empty cues are dropped and
// the result is ordered by start time.
func ParseTimedText(data []byte) ([]transcript.Cue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnknownTimedText
	}

	var (
		cues []transcript.Cue
		err  error
	)
	if trimmed[0] == '{' {
		cues, err = parseJSON3(trimmed)
	} else {
		cues, err = parseTimedTextXML(trimmed)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})
	return cues, nil
}

func parseTimedTextXML(data []byte) ([]transcript.Cue, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		cues []transcript.Cue
		root string
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("youtube: malformed timed text XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if root == "" {
			root = start.Name.Local
			if root != "transcript" && root != "timedtext" {
				return nil, fmt.Errorf("%w: root element <%s>", ErrUnknownTimedText, root)
			}
			continue
		}

		var scale float64
		var startAttr, durAttr string
		switch {
		case root == "transcript" && start.Name.Local == "text":
			scale, startAttr, durAttr = 1, "start", "dur"
		case root == "timedtext" && start.Name.Local == "p":
			scale, startAttr, durAttr = 0.001, "t", "d"
		default:
			continue
		}

		content, err := elementText(decoder)
		if err != nil {
			return nil, fmt.Errorf("youtube: malformed timed text XML: %w", err)
		}

		begin, err := floatAttr(start, startAttr)
		if err != nil {
			return nil, err
		}
		dur, err := floatAttr(start, durAttr)
		if err != nil {
			return nil, err
		}

		text := cleanText(transcript.DecodeEntities(content))
		if text == "" {
			continue
		}
		cues = append(cues, transcript.Cue{
			Start: begin * scale,
			End:   (begin + dur) * scale,
			Text:  text,
		})
	}

	if root == "" {
		return nil, ErrUnknownTimedText
	}
	return cues, nil
}

// collects character data up to the end of the current element, like DOM textContent
func elementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return sb.String(), nil
}

// missing attributes count as zero
func floatAttr(el xml.StartElement, name string) (float64, error) {
	for _, attr := range el.Attr {
		if attr.Name.Local != name {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
		if err != nil {
			return 0, fmt.Errorf(
				"youtube: invalid %s attribute %q on <%s>",
				name,
				attr.Value,
				el.Name.Local,
			)
		}
		return v, nil
	}
	return 0, nil
}

func parseJSON3(data []byte) ([]transcript.Cue, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("youtube: malformed json3 payload")
	}
	events := gjson.GetBytes(data, "events")
	if !events.IsArray() {
		return nil, fmt.Errorf("%w: json3 without events", ErrUnknownTimedText)
	}

	var cues []transcript.Cue
	events.ForEach(func(_, event gjson.Result) bool {
		segs := event.Get("segs")
		if !segs.IsArray() {
			return true
		}

		var sb strings.Builder
		for _, seg := range segs.Array() {
			sb.WriteString(seg.Get("utf8").String())
		}
		text := cleanText(sb.String())
		if text == "" {
			return true
		}

		startMs := event.Get("tStartMs").Float()
		durMs := event.Get("dDurationMs").Float()
		cues = append(cues, transcript.Cue{
			Start: startMs / 1000,
			End:   (startMs + durMs) / 1000,
			Text:  text,
		})
		return true
	})

	return cues, nil
}

func cleanText(s string) string {
	s = markupRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
