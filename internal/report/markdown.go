package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/chocotest/internal/models"
)

// FormatMarkdown renders the suite summary as a Markdown document.
// Returns an empty document header even when no cases ran.
func FormatMarkdown(s models.SuiteSummary) string {
	plain := New(false)

	var sb strings.Builder
	sb.WriteString("# Test Results\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", s.RunID)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "- Started: %s\n", s.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "- Duration: %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "- **%d/%d tests passed**\n\n", s.Passed, s.Total)

	if len(s.Verdicts) == 0 {
		return sb.String()
	}

	sb.WriteString("| # | Source | Mode | Result | Kind | Duration |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i, v := range s.Verdicts {
		status := "✅ PASS"
		if !v.Passed() {
			status = "❌ FAIL"
		}
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s | %s | %v |\n",
			i+1, v.Case.Source, v.Case.Mode, status, v.Kind, v.Duration.Round(time.Millisecond))
	}

	failed := s.FailedVerdicts()
	if len(failed) == 0 {
		return sb.String()
	}

	sb.WriteString("\n## Failures\n")
	for _, v := range failed {
		fmt.Fprintf(&sb, "\n### `%s`\n\n", v.Case.Source)
		sb.WriteString("```\n")
		sb.WriteString(strings.TrimRight(plain.Diagnostic(v), "\n"))
		sb.WriteString("\n```\n")
	}
	return sb.String()
}

// FormatHTML renders the Markdown report to HTML with goldmark.
func FormatHTML(s models.SuiteSummary) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(s)), &body); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Test Results</title></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
