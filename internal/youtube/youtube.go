package youtube

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNoPlayerResponse = errors.New("youtube: player response not found in page")
	ErrNoCaptions       = errors.New("youtube: no captions available for this video")
	ErrInvalidVideoID   = errors.New("youtube: invalid video id")
)

// language picked when the caller does not ask for one
const DefaultLanguage = "en"

const captionTracksPath = "captions.playerCaptionsTracklistRenderer.captionTracks"

// caption track advertised by the player response
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string // "asr" for auto-generated tracks
	VssID        string
	Translatable bool
}

// reports whether the track was generated by speech recognition
func (t CaptionTrack) AutoGenerated() bool {
	return t.Kind == "asr"
}

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID accepts a bare id or any of the common watch, short, embed and
// youtu.be URL shapes.
func VideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDRegex.MatchString(input) {
		return input, nil
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, input)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var candidate string
	switch host {
	case "youtu.be":
		candidate = segments[0]
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
		} else if len(segments) == 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				candidate = segments[1]
			}
		}
	}

	if !videoIDRegex.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, input)
	}
	return candidate, nil
}

// ExtractPlayerResponse locates the ytInitialPlayerResponse object in a
// watch page and returns its JSON text.
func ExtractPlayerResponse(page []byte) ([]byte, error) {
	marker := []byte("ytInitialPlayerResponse")
	for offset := 0; ; {
		idx := bytes.Index(page[offset:], marker)
		if idx < 0 {
			return nil, ErrNoPlayerResponse
		}
		offset += idx + len(marker)

		rest := bytes.TrimLeft(page[offset:], " \t\r\n")
		if len(rest) == 0 || rest[0] != '=' {
			continue
		}
		rest = bytes.TrimLeft(rest[1:], " \t\r\n")
		if len(rest) == 0 || rest[0] != '{' {
			continue
		}

		end := matchBrace(rest)
		if end < 0 {
			return nil, ErrNoPlayerResponse
		}
		obj := rest[:end+1]
		if !gjson.ValidBytes(obj) {
			return nil, fmt.Errorf("%w: malformed JSON", ErrNoPlayerResponse)
		}
		return obj, nil
	}
}

// index of the brace closing data[0], honouring JSON strings
func matchBrace(data []byte) int {
	depth := 0
	inString := false
	escaped := false

	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// CaptionTracks reads the caption track list out of a player response.
// The payload is loosely typed, so every field is optional; tracks without
// a base URL are skipped.
func CaptionTracks(playerResponse []byte) ([]CaptionTrack, error) {
	if !gjson.ValidBytes(playerResponse) {
		return nil, fmt.Errorf("youtube: player response is not valid JSON")
	}

	list := gjson.GetBytes(playerResponse, captionTracksPath)
	if !list.IsArray() {
		return nil, ErrNoCaptions
	}

	var tracks []CaptionTrack
	list.ForEach(func(_, item gjson.Result) bool {
		baseURL := item.Get("baseUrl").String()
		if baseURL == "" {
			return true
		}
		tracks = append(tracks, CaptionTrack{
			BaseURL:      baseURL,
			LanguageCode: item.Get("languageCode").String(),
			Name:         trackName(item.Get("name")),
			Kind:         item.Get("kind").String(),
			VssID:        item.Get("vssId").String(),
			Translatable: item.Get("isTranslatable").Bool(),
		})
		return true
	})

	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// names come either as simpleText or as a list of runs
func trackName(name gjson.Result) string {
	if s := name.Get("simpleText"); s.Exists() {
		return s.String()
	}
	var sb strings.Builder
	for _, run := range name.Get("runs.#.text").Array() {
		sb.WriteString(run.String())
	}
	return sb.String()
}

// SelectTrack returns the track for lang (DefaultLanguage when empty),
// preferring manually created captions over auto-generated ones. Without a
// match it falls back to the first track.
func SelectTrack(tracks []CaptionTrack, lang string) (CaptionTrack, error) {
	if len(tracks) == 0 {
		return CaptionTrack{}, ErrNoCaptions
	}

	if lang == "" {
		lang = DefaultLanguage
	}

	var auto *CaptionTrack
	for i := range tracks {
		if !strings.EqualFold(tracks[i].LanguageCode, lang) {
			continue
		}
		if !tracks[i].AutoGenerated() {
			return tracks[i], nil
		}
		if auto == nil {
			auto = &tracks[i]
		}
	}
	if auto != nil {
		return *auto, nil
	}

	return tracks[0], nil
}
