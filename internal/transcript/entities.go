package transcript

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

var namedEntities = map[string]string{
	"quot": `"`,
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"apos": "'",
}

// longest reference body we try to match, e.g. "#1114111"
const maxEntityLen = 10

// DecodeEntities replaces numeric character references (&#NNN; and &#xHH;)
// and the five XML named references in a single left-to-right pass.
// Decoded output is never rescanned, so "&amp;lt;" becomes "&lt;".
// Unknown or malformed references are copied through unchanged.
func DecodeEntities(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] != '&' {
			sb.WriteByte(text[i])
			i++
			continue
		}

		semi := strings.IndexByte(text[i+1:min(len(text), i+2+maxEntityLen)], ';')
		if semi <= 0 {
			sb.WriteByte('&')
			i++
			continue
		}

		body := text[i+1 : i+1+semi]
		if decoded, ok := decodeEntity(body); ok {
			sb.WriteString(decoded)
			i += semi + 2
			continue
		}

		sb.WriteByte('&')
		i++
	}

	return sb.String()
}

func decodeEntity(body string) (string, bool) {
	if s, ok := namedEntities[body]; ok {
		return s, true
	}
	if len(body) < 2 || body[0] != '#' {
		return "", false
	}

	digits, base := body[1:], 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return "", false
	}

	code, err := strconv.ParseUint(digits, base, 32)
	if err != nil || code == 0 || !utf8.ValidRune(rune(code)) {
		return "", false
	}
	return string(rune(code)), true
}
