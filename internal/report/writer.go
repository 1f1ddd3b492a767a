package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/chocotest/internal/filelock"
	"github.com/harrison/chocotest/internal/models"
)

// Format is the on-disk format of a suite report.
type Format int

const (
	// MarkdownReport writes a Markdown (.md, .markdown) report.
	MarkdownReport Format = iota
	// HTMLReport writes an HTML (.html, .htm) report.
	HTMLReport
	// JSONReport writes a canonical JSON (.json) report.
	JSONReport
)

// DetectFormat picks the report format from the file extension.
// Unknown extensions fall back to Markdown.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return HTMLReport
	case ".json":
		return JSONReport
	default:
		return MarkdownReport
	}
}

// Render produces the report bytes for format.
func Render(s models.SuiteSummary, format Format) ([]byte, error) {
	switch format {
	case HTMLReport:
		return FormatHTML(s)
	case JSONReport:
		return FormatJSON(s)
	default:
		return []byte(FormatMarkdown(s)), nil
	}
}

// WriteFile renders the summary in the format implied by path and writes it
// atomically.
func WriteFile(path string, s models.SuiteSummary) error {
	data, err := Render(s, DetectFormat(path))
	if err != nil {
		return err
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
