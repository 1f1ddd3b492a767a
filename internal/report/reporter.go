// Package report renders verdicts into human-readable diagnostics and
// writes suite reports.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/chocotest/internal/models"
)

// stderrTailLines limits how much compiler stderr is shown for invocation failures.
const stderrTailLines = 20

// ColorEnabled reports whether w is a terminal that should receive ANSI colour.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorScheme defines consistent colors for verdict output.
// Green: passing cases and expected lines
// Red: failing cases and actual lines
// Yellow: directives and warnings
// Cyan: labels
type colorScheme struct {
	pass  *color.Color
	fail  *color.Color
	warn  *color.Color
	label *color.Color
	bold  *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		pass:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		warn:  color.New(color.FgYellow),
		label: color.New(color.FgCyan),
		bold:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.pass, s.fail, s.warn, s.label, s.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Reporter formats verdicts. The zero value is not usable; use New.
type Reporter struct {
	colors *colorScheme
}

// New creates a Reporter. colorOutput enables ANSI colour codes.
func New(colorOutput bool) *Reporter {
	return &Reporter{colors: newColorScheme(colorOutput)}
}

// CaseLine returns the one-line result for a case: "Pass: <src>" or
// "Fail: <src> (<kind>)".
func (r *Reporter) CaseLine(v models.Verdict) string {
	if v.Passed() {
		return fmt.Sprintf("%s %s", r.colors.pass.Sprint("Pass:"), v.Case.Source)
	}
	return fmt.Sprintf("%s %s (%s)", r.colors.fail.Sprint("Fail:"), v.Case.Source, v.Kind)
}

// SummaryLine returns "<passed>/<total> tests passed".
func (r *Reporter) SummaryLine(s models.SuiteSummary) string {
	line := fmt.Sprintf("%d/%d tests passed", s.Passed, s.Total)
	if s.Passed == s.Total {
		return r.colors.pass.Sprint(line)
	}
	return r.colors.fail.Sprint(line)
}

// Diagnostic renders the failure detail of v. It returns "" for passing verdicts.
func (r *Reporter) Diagnostic(v models.Verdict) string {
	if v.Passed() {
		return ""
	}

	var sb strings.Builder
	switch v.Kind {
	case models.KindContentMismatch, models.KindLengthMismatch:
		r.writeExact(&sb, v)
	case models.KindDirectiveMismatch, models.KindDirectiveExhausted:
		r.writeDirective(&sb, v)
	default:
		r.writeError(&sb, v)
	}
	return sb.String()
}

func (r *Reporter) writeExact(sb *strings.Builder, v models.Verdict) {
	if v.Kind == models.KindLengthMismatch {
		fmt.Fprintf(sb, "Expected %d lines, got %d for %s\n", v.ExpectedLen, v.ActualLen, v.Case.Source)
	} else {
		fmt.Fprintf(sb, "Line %d does not match for %s\n", v.FailureIndex, v.Case.Source)
	}
	if v.Context == nil {
		return
	}

	sb.WriteString(r.colors.label.Sprint("Expected:"))
	sb.WriteString("\n")
	r.writeListing(sb, v.Context.Expected, v.Context.Start, v.Context.Focus, r.colors.pass)
	sb.WriteString(r.colors.label.Sprint("Got:"))
	sb.WriteString("\n")
	r.writeListing(sb, v.Context.Actual, v.Context.Start, v.Context.Focus, r.colors.fail)
}

// writeListing prints lines numbered from start, marking focus with "->".
func (r *Reporter) writeListing(sb *strings.Builder, lines []string, start, focus int, highlight *color.Color) {
	if len(lines) == 0 {
		sb.WriteString("  (no lines)\n")
		return
	}
	for i, line := range lines {
		idx := start + i
		marker := "  "
		if idx == focus {
			marker = "->"
		}
		entry := fmt.Sprintf("%-2s%4d %s", marker, idx, line)
		if idx == focus {
			entry = highlight.Sprint(entry)
		}
		sb.WriteString(entry)
		sb.WriteString("\n")
	}
}

func (r *Reporter) writeDirective(sb *strings.Builder, v models.Verdict) {
	where := filepath.Base(v.Case.ExpectationPath)
	if v.Directive != nil {
		where = fmt.Sprintf("%s:%d", where, v.Directive.Line)
		fmt.Fprintf(sb, "%s %s\n", r.colors.warn.Sprintf("%s %s", v.Directive.Binding.Prefix(), v.Directive.Pattern), "("+where+")")
	}

	switch v.Kind {
	case models.KindDirectiveMismatch:
		fmt.Fprintf(sb, "Directive %d expected the next line (%d) to match\n", v.DirectiveIndex, v.Cursor)
	default:
		fmt.Fprintf(sb, "Directive %d not found in output at or after line %d\n", v.DirectiveIndex, v.Cursor)
	}

	if len(v.Remaining) == 0 {
		sb.WriteString("Remaining output: (none)\n")
		return
	}
	sb.WriteString(r.colors.label.Sprint("Remaining output:"))
	sb.WriteString("\n")
	focus := -1
	if v.Kind == models.KindDirectiveMismatch {
		focus = v.Cursor
	}
	r.writeListing(sb, v.Remaining, v.Cursor, focus, r.colors.fail)
}

func (r *Reporter) writeError(sb *strings.Builder, v models.Verdict) {
	label := "Error"
	switch v.Kind {
	case models.KindInvocationError:
		label = "Invocation failed"
	case models.KindTimeout:
		label = "Timed out"
	case models.KindMalformedExpectation:
		label = "Malformed expectation"
	}
	if v.Err != nil {
		fmt.Fprintf(sb, "%s: %v\n", r.colors.fail.Sprint(label), v.Err)
	} else {
		fmt.Fprintf(sb, "%s\n", r.colors.fail.Sprint(label))
	}

	if tail := tailLines(v.Stderr, stderrTailLines); tail != "" {
		sb.WriteString(r.colors.label.Sprint("stderr:"))
		sb.WriteString("\n")
		sb.WriteString(tail)
		sb.WriteString("\n")
	}
}

// Dump renders the raw expected and actual text of a case.
func (r *Reporter) Dump(v models.Verdict) string {
	var sb strings.Builder
	sb.WriteString(r.colors.bold.Sprintf("Expected (%s):", filepath.Base(v.Case.ExpectationPath)))
	sb.WriteString("\n")
	sb.WriteString(ensureNewline(v.ExpectedText))
	sb.WriteString(r.colors.bold.Sprint("Got:"))
	sb.WriteString("\n")
	sb.WriteString(ensureNewline(v.ActualText))
	return sb.String()
}

func tailLines(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
