package transcript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// output format identifier
type Format string

const (
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formats lists every supported output format in a stable order.
func Formats() []Format {
	return []Format{FormatVTT, FormatSRT, FormatText, FormatJSON}
}

// ParseFormat resolves a format name or file extension, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vtt", "webvtt", ".vtt":
		return FormatVTT, nil
	case "srt", ".srt":
		return FormatSRT, nil
	case "text", "txt", ".txt":
		return FormatText, nil
	case "json", ".json":
		return FormatJSON, nil
	default:
		return "", &UnsupportedFormatError{Format: name}
	}
}

// file extension for a format, including the dot
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatSRT:
		return ".srt"
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}

// Render serializes cues in the given format. The cue list is validated
// first and is never modified. Empty lists fail with ErrEmptyInput.
func Render(cues []Cue, format Format) (string, error) {
	var render func([]Cue) (string, error)
	switch format {
	case FormatVTT:
		render = renderVTT
	case FormatSRT:
		render = renderSRT
	case FormatText:
		render = renderText
	case FormatJSON:
		render = renderJSON
	default:
		return "", &UnsupportedFormatError{Format: string(format)}
	}

	if len(cues) == 0 {
		return "", ErrEmptyInput
	}
	if err := Validate(cues); err != nil {
		return "", err
	}

	return render(cues)
}

func renderVTT(cues []Cue) (string, error) {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, cue := range cues {
		writeTiming(&sb, cue, StyleDot)
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func renderSRT(cues []Cue) (string, error) {
	var sb strings.Builder
	for i, cue := range cues {
		// positional, 1-based
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		writeTiming(&sb, cue, StyleComma)
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func renderText(cues []Cue) (string, error) {
	texts := make([]string, len(cues))
	for i, cue := range cues {
		texts[i] = cue.Text
	}
	return strings.Join(texts, " "), nil
}

func renderJSON(cues []Cue) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cues); err != nil {
		return "", fmt.Errorf("failed to encode cues: %w", err)
	}
	return sb.String(), nil
}

func writeTiming(sb *strings.Builder, cue Cue, style Style) {
	sb.WriteString(FormatTimestamp(cue.Start, style))
	sb.WriteString(" --> ")
	sb.WriteString(FormatTimestamp(cue.End, style))
	sb.WriteByte('\n')
}
