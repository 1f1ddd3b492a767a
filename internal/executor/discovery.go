package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/chocotest/internal/expect"
	"github.com/harrison/chocotest/internal/fileutil"
	"github.com/harrison/chocotest/internal/models"
)

// DiscoveryOptions controls how positional arguments expand into sources.
type DiscoveryOptions struct {
	SourceExt string // Extension of source files inside directories (e.g. ".py")
	Recursive bool   // Descend into subdirectories
}

// Discovery is the filtered suite: runnable cases plus the candidates that
// were excluded for lacking an expectation artifact.
type Discovery struct {
	Cases    []models.TestCase
	Excluded []string
	Warnings []error // Non-fatal scan errors
}

// Discover expands paths into candidate sources, then filters them into test
// cases in a separate pass. Candidates without an expectation are excluded,
// candidates with both a .ast and a .err file are a ConfigError. Totals are
// only ever computed from the filtered list.
func Discover(paths []string, opts DiscoveryOptions) (*Discovery, error) {
	if len(paths) == 0 {
		return nil, NewConfigError("no test files specified", nil)
	}

	d := &Discovery{}
	candidates, err := collectCandidates(paths, opts, d)
	if err != nil {
		return nil, err
	}

	var ambiguous []string
	for _, source := range candidates {
		if !isRegularFile(source) {
			d.Excluded = append(d.Excluded, source)
			continue
		}

		mode, both := expect.DetectMode(source)
		if both {
			ambiguous = append(ambiguous, source)
			continue
		}
		if mode == models.ModeNone {
			d.Excluded = append(d.Excluded, source)
			continue
		}

		d.Cases = append(d.Cases, models.TestCase{
			Index:           len(d.Cases),
			Source:          source,
			ExpectationPath: expect.PathFor(source, mode),
			Mode:            mode,
		})
	}

	if len(ambiguous) > 0 {
		return nil, &ConfigError{
			Message: fmt.Sprintf("%d source file(s) have both %s and %s expectations", len(ambiguous), models.ASTSuffix, models.ErrSuffix),
			Files:   ambiguous,
		}
	}

	return d, nil
}

// collectCandidates expands directories and deduplicates paths, preserving
// argument order.
func collectCandidates(paths []string, opts DiscoveryOptions, d *Discovery) ([]string, error) {
	ext := opts.SourceExt
	if ext == "" {
		ext = ".py"
	}

	var candidates []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			add(path)
			continue
		}

		result, err := fileutil.ScanDirectory(path, fileutil.ScanOptions{
			Extensions: []string{ext},
			Recursive:  opts.Recursive,
		})
		if err != nil {
			return nil, NewConfigError(fmt.Sprintf("failed to scan %s", path), err)
		}
		d.Warnings = append(d.Warnings, result.Errors...)
		for _, file := range result.Files {
			add(file)
		}
	}

	return candidates, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
