// Package textutil holds the pure text helpers shared by the provider
// adapters, the normalizer and the content extractor. No I/O happens here.
package textutil

import (
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DecodeEntities decodes HTML entities (&amp;, &#39;, named and numeric).
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// StripTags removes everything between '<' and '>' and replaces it with a
// space, so adjacent words don't get glued together.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			if inTag {
				inTag = false
				b.WriteRune(' ')
			} else {
				b.WriteRune(r)
			}
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Collapse trims the string and folds any run of whitespace (including
// non-breaking spaces) into a single regular space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountHan counts Han-script code points. Rune based, so multi-byte safe.
func CountHan(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			n++
		}
	}
	return n
}

// HasHan reports whether the string contains at least one Han code point.
func HasHan(s string) bool {
	return CountHan(s) > 0
}

// TruncateRunes cuts s after max runes. Byte slicing would split multi-byte
// characters, so the cut is done on the rune sequence.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// displayLayout is the timestamp format shown to API clients.
const displayLayout = "2006-01-02 15:04"

// parseLayouts are the formats the upstream providers have been seen using.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTime parses a raw provider date string on a best-effort basis.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDisplayDate turns a raw date string into "YYYY-MM-DD HH:mm".
// Unparseable input is returned as-is, empty input stays empty.
func FormatDisplayDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, ok := ParseTime(raw)
	if !ok {
		return raw
	}
	return t.Format(displayLayout)
}

// FormatDisplayTime formats a time.Time for API responses.
func FormatDisplayTime(t time.Time) string {
	return t.Format(displayLayout)
}
