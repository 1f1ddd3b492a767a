package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/harrison/chocotest/internal/models"
)

// RunOutput holds the captured streams of one process run.
type RunOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int // -1 if the process did not start
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (RunOutput, error)
}

// ExecCommandRunner runs processes with os/exec, capturing stdout and stderr
// separately.
type ExecCommandRunner struct {
	WorkDir string // Working directory for commands (empty = current dir)
}

// NewExecCommandRunner creates a CommandRunner that executes real processes.
func NewExecCommandRunner(workDir string) *ExecCommandRunner {
	return &ExecCommandRunner{WorkDir: workDir}
}

// Run executes name with args. A non-zero exit is returned as *exec.ExitError
// alongside the captured output.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (RunOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := RunOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	return out, err
}

// InvokerConfig describes how the compiler-under-test is called.
type InvokerConfig struct {
	Executable        string        // Path or PATH-resolvable name
	ASTDumpFlag       string        // Mode flag for exact-mode cases
	DiagnosticFlag    string        // Mode flag for directive-mode cases
	ExtraFlags        []string      // Forwarded after the mode flag
	StrictDiagnostics bool          // Treat non-zero exit as failure in directive mode
	Timeout           time.Duration // 0 = wait indefinitely
}

// Invoker runs the compiler-under-test for a test case.
type Invoker struct {
	runner CommandRunner
	cfg    InvokerConfig
}

// NewInvoker creates an Invoker. A nil runner selects ExecCommandRunner.
func NewInvoker(runner CommandRunner, cfg InvokerConfig) *Invoker {
	if runner == nil {
		runner = NewExecCommandRunner("")
	}
	return &Invoker{runner: runner, cfg: cfg}
}

// Args returns the argument list for a case:
// <source> <mode-flag> [extra-flags...]. An empty mode flag is omitted.
func (inv *Invoker) Args(c models.TestCase) []string {
	args := []string{c.Source}
	flag := inv.cfg.ASTDumpFlag
	if c.Mode == models.ModeDirective {
		flag = inv.cfg.DiagnosticFlag
	}
	if flag != "" {
		args = append(args, flag)
	}
	return append(args, inv.cfg.ExtraFlags...)
}

// Invoke runs the compiler for c and returns its captured output.
// It returns *TimeoutError when the bounded wait expires and *InvocationError
// when the process cannot start, or exits non-zero under strict invocation.
// Exact mode is always strict.
func (inv *Invoker) Invoke(ctx context.Context, c models.TestCase) (RunOutput, error) {
	if inv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.cfg.Timeout)
		defer cancel()
	}

	args := inv.Args(c)
	out, err := inv.runner.Run(ctx, inv.cfg.Executable, args...)
	if err == nil {
		return out, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, NewTimeoutError(c.Source, inv.cfg.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		strict := c.Mode == models.ModeExact || inv.cfg.StrictDiagnostics
		if !strict {
			return out, nil
		}
	}

	return out, &InvocationError{
		Source:   c.Source,
		Command:  append([]string{inv.cfg.Executable}, args...),
		ExitCode: out.ExitCode,
		Stderr:   out.Stderr,
		Err:      err,
	}
}
