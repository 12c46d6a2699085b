package util

import (
	"strings"
	"unicode/utf8"
)

// MaxURLLength bounds every URL emitted in the manifest.
const MaxURLLength = 8192

// SanitizeURL returns a URL safe to emit in the manifest, or an empty string.
// Only http/https URLs pass; javascript: and data: payloads are rejected no
// matter where they appear in the string. Idempotent.
func SanitizeURL(raw string) string {
	cleaned := truncate(strings.TrimSpace(raw), MaxURLLength)
	lower := strings.ToLower(cleaned)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}
	if strings.Contains(lower, "javascript:") || strings.Contains(lower, "data:") {
		return ""
	}
	return cleaned
}

// SanitizeText strips control characters (newline and tab survive) and
// truncates to maxLength bytes. Idempotent.
func SanitizeText(raw string, maxLength int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	return truncate(cleaned, maxLength)
}

// truncate cuts at a rune boundary so re-sanitizing never sees broken UTF-8.
func truncate(s string, maxLength int) string {
	if maxLength <= 0 || len(s) <= maxLength {
		return s
	}
	cut := s[:maxLength]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
