package models

import (
	"errors"
	"path/filepath"
)

// Expectation artifact suffixes appended to the source file name.
const (
	ASTSuffix = ".ast"
	ErrSuffix = ".err"
)

// TestCase is one source file paired with its expectation artifact.
type TestCase struct {
	Index           int    // Position in the filtered suite, in file order
	Source          string // Path of the source file handed to the compiler
	ExpectationPath string // Path of the .ast or .err file
	Mode            Mode   // Matcher selected by the artifact present
}

// Name returns the base name of the source file.
func (c TestCase) Name() string {
	return filepath.Base(c.Source)
}

// Validate checks if the case has all required fields
func (c *TestCase) Validate() error {
	if c.Source == "" {
		return errors.New("test case source is required")
	}
	if c.ExpectationPath == "" {
		return errors.New("test case expectation path is required")
	}
	if c.Mode != ModeExact && c.Mode != ModeDirective {
		return errors.New("test case mode must be exact or directive")
	}
	return nil
}

// ASTPath returns the exact-mode expectation path for a source file.
func ASTPath(source string) string {
	return source + ASTSuffix
}

// ErrPath returns the directive-mode expectation path for a source file.
func ErrPath(source string) string {
	return source + ErrSuffix
}
