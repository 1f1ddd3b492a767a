// Package expect reads recorded expectations: literal .ast dumps and
// CHECK directive files.
package expect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/chocotest/internal/models"
)

// ErrMalformedExpectation indicates an expectation file could not be read.
var ErrMalformedExpectation = errors.New("malformed expectation")

// SplitLines splits text into lines. A trailing newline does not produce an
// extra empty line and a trailing carriage return is dropped from each line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ParseDirectives scans text for CHECK: and CHECK-NEXT: lines. All other
// lines are ignored. Directives are returned in file order.
func ParseDirectives(text string) []models.Directive {
	directives := []models.Directive{}
	for i, line := range SplitLines(text) {
		var binding models.Binding
		var rest string
		switch {
		case strings.HasPrefix(line, models.PrefixAnchored):
			binding = models.Anchored
			rest = line[len(models.PrefixAnchored):]
		case strings.HasPrefix(line, models.PrefixFloating):
			binding = models.Floating
			rest = line[len(models.PrefixFloating):]
		default:
			continue
		}
		directives = append(directives, models.Directive{
			Binding: binding,
			Pattern: strings.TrimSpace(rest),
			Line:    i + 1,
		})
	}
	return directives
}

// Parse reads an expectation from r in the given mode.
func Parse(r io.Reader, mode models.Mode) (*models.ExpectationSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExpectation, err)
	}

	set := &models.ExpectationSet{
		Mode: mode,
		Raw:  string(data),
	}
	switch mode {
	case models.ModeExact:
		set.Lines = SplitLines(set.Raw)
	case models.ModeDirective:
		set.Directives = ParseDirectives(set.Raw)
	default:
		return nil, fmt.Errorf("unsupported expectation mode: %v", mode)
	}
	return set, nil
}

// ParseFile opens path and parses it in the given mode. Any read failure is
// reported as ErrMalformedExpectation.
func ParseFile(path string, mode models.Mode) (*models.ExpectationSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedExpectation, path, err)
	}
	defer file.Close()

	set, err := Parse(file, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set.Path = path
	return set, nil
}

// ReadExpectedLines loads a .ast file as literal lines.
func ReadExpectedLines(path string) ([]string, error) {
	set, err := ParseFile(path, models.ModeExact)
	if err != nil {
		return nil, err
	}
	return set.Lines, nil
}

// DetectMode reports which expectation artifacts exist next to source.
// It returns ModeNone when neither exists. When both exist, ambiguous is true
// and the returned mode is ModeNone.
func DetectMode(source string) (mode models.Mode, ambiguous bool) {
	hasAST := isFile(models.ASTPath(source))
	hasErr := isFile(models.ErrPath(source))
	switch {
	case hasAST && hasErr:
		return models.ModeNone, true
	case hasAST:
		return models.ModeExact, false
	case hasErr:
		return models.ModeDirective, false
	default:
		return models.ModeNone, false
	}
}

// PathFor returns the expectation path for source in mode.
func PathFor(source string, mode models.Mode) string {
	if mode == models.ModeDirective {
		return models.ErrPath(source)
	}
	return models.ASTPath(source)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
