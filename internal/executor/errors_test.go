package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfigErrorFormatting verifies ConfigError message, cause and file list.
func TestConfigErrorFormatting(t *testing.T) {
	tests := []struct {
		name        string
		err         *ConfigError
		wantContain []string
	}{
		{
			name:        "message only",
			err:         NewConfigError("no test files specified", nil),
			wantContain: []string{"configuration error", "no test files specified"},
		},
		{
			name:        "with cause",
			err:         NewConfigError("compiler executable not found: cc", exec.ErrNotFound),
			wantContain: []string{"compiler executable not found: cc", exec.ErrNotFound.Error()},
		},
		{
			name: "with files",
			err: &ConfigError{
				Message: "2 source file(s) have both .ast and .err expectations",
				Files:   []string{"a.py", "b.py"},
			},
			wantContain: []string{"\n  - a.py", "\n  - b.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errString := tt.err.Error()
			for _, want := range tt.wantContain {
				if !strings.Contains(errString, want) {
					t.Errorf("Error() = %q, want to contain %q", errString, want)
				}
			}
		})
	}
}

// TestConfigErrorUnwrap verifies errors.Is sees through ConfigError.
func TestConfigErrorUnwrap(t *testing.T) {
	err := NewConfigError("lookup failed", exec.ErrNotFound)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

// TestInvocationErrorFormatting verifies the command and exit status appear.
func TestInvocationErrorFormatting(t *testing.T) {
	cause := errors.New("exit status 3")
	err := &InvocationError{
		Source:   "t.py",
		Command:  []string{"chocopy", "t.py", "-ast-dump"},
		ExitCode: 3,
		Err:      cause,
	}

	errString := err.Error()
	for _, want := range []string{"t.py", `"chocopy t.py -ast-dump"`, "exited with status 3", "exit status 3"} {
		if !strings.Contains(errString, want) {
			t.Errorf("Error() = %q, want to contain %q", errString, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("InvocationError should unwrap to its cause")
	}

	notStarted := &InvocationError{Source: "t.py", Command: []string{"missing"}, ExitCode: -1, Err: exec.ErrNotFound}
	if strings.Contains(notStarted.Error(), "exited with status") {
		t.Errorf("Error() for a process that never ran should omit the status: %q", notStarted.Error())
	}
}

// TestNewTimeoutError verifies TimeoutError creation and formatting.
func TestNewTimeoutError(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		duration    time.Duration
		wantContain []string
	}{
		{
			name:        "30 second timeout",
			source:      "slow.py",
			duration:    30 * time.Second,
			wantContain: []string{"slow.py", "30s", "timeout"},
		},
		{
			name:        "2 minute timeout",
			source:      "loop.py",
			duration:    2 * time.Minute,
			wantContain: []string{"loop.py", "2m0s", "timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeoutErr := NewTimeoutError(tt.source, tt.duration)

			if timeoutErr.Source != tt.source {
				t.Errorf("Source = %q, want %q", timeoutErr.Source, tt.source)
			}
			if timeoutErr.TimeoutDuration != tt.duration {
				t.Errorf("TimeoutDuration = %v, want %v", timeoutErr.TimeoutDuration, tt.duration)
			}
			if timeoutErr.Timestamp.IsZero() {
				t.Error("expected non-zero Timestamp")
			}

			errString := timeoutErr.Error()
			for _, want := range tt.wantContain {
				if !strings.Contains(errString, want) {
					t.Errorf("Error() = %q, want to contain %q", errString, want)
				}
			}
		})
	}
}

// TestErrorPredicates verifies the Is* helpers against direct and wrapped errors.
func TestErrorPredicates(t *testing.T) {
	cfg := NewConfigError("bad", nil)
	inv := &InvocationError{Source: "a.py", ExitCode: 1}
	timeout := NewTimeoutError("a.py", time.Second)

	tests := []struct {
		name        string
		err         error
		wantConfig  bool
		wantInvoke  bool
		wantTimeout bool
	}{
		{"nil", nil, false, false, false},
		{"plain", errors.New("x"), false, false, false},
		{"config", cfg, true, false, false},
		{"wrapped config", fmt.Errorf("run: %w", cfg), true, false, false},
		{"invocation", inv, false, true, false},
		{"wrapped invocation", fmt.Errorf("case: %w", inv), false, true, false},
		{"timeout", timeout, false, false, true},
		{"deadline exceeded", context.DeadlineExceeded, false, false, true},
		{"wrapped timeout", fmt.Errorf("case: %w", timeout), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.wantConfig {
				t.Errorf("IsConfigError() = %v, want %v", got, tt.wantConfig)
			}
			if got := IsInvocationError(tt.err); got != tt.wantInvoke {
				t.Errorf("IsInvocationError() = %v, want %v", got, tt.wantInvoke)
			}
			if got := IsTimeoutError(tt.err); got != tt.wantTimeout {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.wantTimeout)
			}
		})
	}
}

// TestTimeoutErrorUnwrap verifies TimeoutError unwraps to DeadlineExceeded.
func TestTimeoutErrorUnwrap(t *testing.T) {
	err := NewTimeoutError("a.py", time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to context.DeadlineExceeded")
	}
}
