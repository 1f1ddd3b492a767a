// Package matcher holds the two verification algorithms: exact sequential
// line comparison and CHECK directive matching.
package matcher

import (
	"strings"

	"github.com/harrison/chocotest/internal/models"
)

// DefaultContextRadius is the number of lines shown either side of a divergence.
const DefaultContextRadius = 5

// LineResult is the outcome of CompareLines.
type LineResult struct {
	Outcome      models.Outcome
	Kind         models.FailureKind
	FailureIndex int // -1 on pass
	Context      *models.ContextWindow
}

// Passed reports whether every line matched and the lengths agree.
func (r LineResult) Passed() bool {
	return r.Outcome == models.OutcomePass
}

// CompareLines walks expected and actual pairwise, comparing trimmed lines.
// The first differing index is a content mismatch. A matching common prefix
// with differing lengths is a length mismatch, reported at the length of the
// shorter sequence. A negative radius selects DefaultContextRadius.
func CompareLines(expected, actual []string, radius int) LineResult {
	if radius < 0 {
		radius = DefaultContextRadius
	}

	common := len(expected)
	if len(actual) < common {
		common = len(actual)
	}

	for i := 0; i < common; i++ {
		if strings.TrimSpace(expected[i]) != strings.TrimSpace(actual[i]) {
			return LineResult{
				Outcome:      models.OutcomeFail,
				Kind:         models.KindContentMismatch,
				FailureIndex: i,
				Context:      Window(expected, actual, i, radius),
			}
		}
	}

	if len(expected) != len(actual) {
		return LineResult{
			Outcome:      models.OutcomeFail,
			Kind:         models.KindLengthMismatch,
			FailureIndex: common,
			Context:      Window(expected, actual, common, radius),
		}
	}

	return LineResult{Outcome: models.OutcomePass, FailureIndex: -1}
}

// Window returns the lines of expected and actual in [focus-radius, focus+radius],
// each clipped to its own bounds.
func Window(expected, actual []string, focus, radius int) *models.ContextWindow {
	start := focus - radius
	if start < 0 {
		start = 0
	}
	end := focus + radius + 1

	return &models.ContextWindow{
		Start:    start,
		Focus:    focus,
		Expected: clip(expected, start, end),
		Actual:   clip(actual, start, end),
	}
}

func clip(lines []string, start, end int) []string {
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return []string{}
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}
