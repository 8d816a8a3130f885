package utils

import (
	"strings"
)

// MaxCallsignLength bounds user supplied callsigns.
const MaxCallsignLength = 32

// NormalizeCallsign removes common system suffixes and invalid characters
// from a raw callsign string, returning the cleaned canonical form.
// Spotting networks append markers like "-#" to skimmer callsigns; those are
// stripped before resolution.
func NormalizeCallsign(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))

	// Remove the literal "-#" suffix
	if idx := strings.Index(raw, "-#"); idx != -1 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, "#", "")
	// Trim stray hyphens left by replacements
	raw = strings.Trim(raw, "- ")

	return strings.TrimSpace(raw)
}

// ValidCallsign reports whether s, already normalized, only uses the
// characters a country file callsign can contain: letters, digits and '/'.
func ValidCallsign(s string) bool {
	if s == "" || len(s) > MaxCallsignLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c != '/' {
			return false
		}
	}
	return true
}
