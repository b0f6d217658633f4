package core

import (
	"fmt"
	"regexp"
	"strconv"
)

// scorePattern matches a care score written with exactly two digits after the
// decimal point: one or two integer digits, or the literal 100.00. The
// 100.00 alternative comes first so the trailing "00.00" substring can never
// win. Bare integers ("85") and one-decimal values ("85.5") deliberately do
// not match: the prompt demands this exact shape, and anything else fails
// closed instead of being guessed at.
var scorePattern = regexp.MustCompile(`\b(100\.00|\d{1,2}\.\d{2})\b`)

// ParseCareScore extracts the first care score from free-form model output.
func ParseCareScore(text string) (float64, error) {
	match := scorePattern.FindString(text)
	if match == "" {
		return SentinelScore, fmt.Errorf("no score of the form 0.00-100.00 in model output: %q", clip(text, 120))
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return SentinelScore, fmt.Errorf("failed to parse score %q: %w", match, err)
	}
	return score, nil
}

// clip bounds a string for inclusion in error messages.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
