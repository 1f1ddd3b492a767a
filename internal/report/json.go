package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/harrison/chocotest/internal/models"
)

type jsonSummary struct {
	RunID      string        `json:"run_id"`
	StartedAt  string        `json:"started_at,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	Total      int           `json:"total"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Cases      []jsonVerdict `json:"cases"`
}

type jsonVerdict struct {
	Source         string   `json:"source"`
	Expectation    string   `json:"expectation"`
	Mode           string   `json:"mode"`
	Outcome        string   `json:"outcome"`
	Kind           string   `json:"kind,omitempty"`
	FailureIndex   *int     `json:"failure_index,omitempty"`
	Directive      string   `json:"directive,omitempty"`
	DirectiveIndex *int     `json:"directive_index,omitempty"`
	Cursor         *int     `json:"cursor,omitempty"`
	Remaining      []string `json:"remaining,omitempty"`
	Error          string   `json:"error,omitempty"`
	DurationMS     int64    `json:"duration_ms"`
}

// FormatJSON renders the summary as RFC 8785 canonical JSON, so that two
// reports of identical runs are byte-identical apart from timing fields.
func FormatJSON(s models.SuiteSummary) ([]byte, error) {
	out := jsonSummary{
		RunID:      s.RunID,
		DurationMS: s.Duration.Milliseconds(),
		Total:      s.Total,
		Passed:     s.Passed,
		Failed:     s.Failed(),
		Cases:      make([]jsonVerdict, 0, len(s.Verdicts)),
	}
	if !s.StartedAt.IsZero() {
		out.StartedAt = s.StartedAt.UTC().Format(time.RFC3339)
	}

	for _, v := range s.Verdicts {
		jv := jsonVerdict{
			Source:      v.Case.Source,
			Expectation: v.Case.ExpectationPath,
			Mode:        v.Case.Mode.String(),
			Outcome:     string(v.Outcome),
			Kind:        string(v.Kind),
			DurationMS:  v.Duration.Milliseconds(),
		}
		if v.FailureIndex >= 0 {
			idx := v.FailureIndex
			jv.FailureIndex = &idx
		}
		if v.Directive != nil {
			idx, cursor := v.DirectiveIndex, v.Cursor
			jv.Directive = v.Directive.String()
			jv.DirectiveIndex = &idx
			jv.Cursor = &cursor
			jv.Remaining = v.Remaining
		}
		if v.Err != nil {
			jv.Error = v.Err.Error()
		}
		out.Cases = append(out.Cases, jv)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json report: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize json report: %w", err)
	}
	return canonical, nil
}
