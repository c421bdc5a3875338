package util

import (
	"regexp"
	"strings"
)

var controlCharsRe = regexp.MustCompile(`[\x00-\x1F\x7F]+`)

// maxLogValueLen bounds user-supplied strings in log fields. Organization
// and person names past this length carry no extra signal.
const maxLogValueLen = 256

// SanitizeForLog strips control characters and newlines from user content
// before it reaches a log line, and bounds its length. Scoring and storage
// always see the raw value; only log output goes through here.
func SanitizeForLog(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = controlCharsRe.ReplaceAllString(s, " ")
	if runes := []rune(s); len(runes) > maxLogValueLen {
		s = string(runes[:maxLogValueLen])
	}
	return s
}
