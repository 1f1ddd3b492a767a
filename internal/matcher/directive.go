package matcher

import (
	"strings"

	"github.com/harrison/chocotest/internal/models"
)

// DirectiveResult is the outcome of MatchDirectives.
type DirectiveResult struct {
	Outcome        models.Outcome
	Kind           models.FailureKind
	DirectiveIndex int               // Index of the failing directive, -1 on pass
	Directive      *models.Directive // The failing directive
	Cursor         int               // Cursor when matching stopped
	Remaining      []string          // actual[Cursor:] on failure
	Trail          []int             // Cursor after each satisfied directive
}

// Passed reports whether every directive was satisfied.
func (r DirectiveResult) Passed() bool {
	return r.Outcome == models.OutcomePass
}

// MatchDirectives checks actual against directives in order using a single
// cursor that never moves backward.
//
// An Anchored directive must equal actual[cursor] after trimming. A Floating
// directive matches the first trimmed-equal line at or after the cursor. A
// match moves the cursor past the matched line. Lines left after the last
// directive do not affect the result.
func MatchDirectives(directives []models.Directive, actual []string) DirectiveResult {
	cursor := 0
	trail := make([]int, 0, len(directives))

	for i := range directives {
		d := directives[i]
		pattern := strings.TrimSpace(d.Pattern)

		switch d.Binding {
		case models.Anchored:
			if cursor >= len(actual) {
				return directiveFailure(models.KindDirectiveExhausted, i, d, cursor, actual, trail)
			}
			if strings.TrimSpace(actual[cursor]) != pattern {
				return directiveFailure(models.KindDirectiveMismatch, i, d, cursor, actual, trail)
			}
			cursor++

		default:
			found := -1
			for j := cursor; j < len(actual); j++ {
				if strings.TrimSpace(actual[j]) == pattern {
					found = j
					break
				}
			}
			if found < 0 {
				return directiveFailure(models.KindDirectiveExhausted, i, d, cursor, actual, trail)
			}
			cursor = found + 1
		}

		trail = append(trail, cursor)
	}

	return DirectiveResult{
		Outcome:        models.OutcomePass,
		DirectiveIndex: -1,
		Cursor:         cursor,
		Trail:          trail,
	}
}

func directiveFailure(kind models.FailureKind, index int, d models.Directive, cursor int, actual []string, trail []int) DirectiveResult {
	remaining := []string{}
	if cursor < len(actual) {
		remaining = append(remaining, actual[cursor:]...)
	}
	return DirectiveResult{
		Outcome:        models.OutcomeFail,
		Kind:           kind,
		DirectiveIndex: index,
		Directive:      &d,
		Cursor:         cursor,
		Remaining:      remaining,
		Trail:          trail,
	}
}
