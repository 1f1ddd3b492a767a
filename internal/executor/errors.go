package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTestsFailed is returned by the CLI when fail-exit is enabled and at least
// one case failed.
var ErrTestsFailed = errors.New("tests failed")

// ConfigError is a fatal configuration problem detected before any test runs:
// a missing executable, an empty file list, an ambiguous expectation or an
// invalid configuration value.
type ConfigError struct {
	Message string   // Human-readable error message
	Files   []string // Offending files (optional)
	Err     error    // Underlying error (optional)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(msg string, err error) *ConfigError {
	return &ConfigError{Message: msg, Err: err}
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error: ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	for _, f := range e.Files {
		sb.WriteString(fmt.Sprintf("\n  - %s", f))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvocationError represents a compiler invocation that failed to spawn or
// exited non-zero under strict invocation.
type InvocationError struct {
	Source   string   // Source file of the test case
	Command  []string // Executable followed by its arguments
	ExitCode int      // Exit code, -1 if the process never ran
	Stderr   string   // Captured diagnostic output
	Err      error    // Underlying error
}

// Error implements the error interface for InvocationError.
func (e *InvocationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invocation failed for %s: %q", e.Source, strings.Join(e.Command, " ")))
	if e.ExitCode >= 0 {
		sb.WriteString(fmt.Sprintf(" exited with status %d", e.ExitCode))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a compiler invocation that exceeded its bounded wait.
type TimeoutError struct {
	Source          string        // Source file of the test case
	TimeoutDuration time.Duration // Duration after which timeout occurred
	Timestamp       time.Time     // When the timeout occurred
}

// NewTimeoutError creates a new TimeoutError with the current timestamp.
func NewTimeoutError(source string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		Source:          source,
		TimeoutDuration: duration,
		Timestamp:       time.Now(),
	}
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("invocation for %s: timeout after %v", e.Source, e.TimeoutDuration)
}

// Unwrap returns context.DeadlineExceeded to support error wrapping.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// IsConfigError checks if the error is or wraps a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInvocationError checks if the error is or wraps an InvocationError.
func IsInvocationError(err error) bool {
	if err == nil {
		return false
	}
	var ie *InvocationError
	return errors.As(err, &ie)
}

// IsTimeoutError checks if the error is or wraps a TimeoutError or context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
