package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/chocotest/internal/expect"
	"github.com/harrison/chocotest/internal/matcher"
	"github.com/harrison/chocotest/internal/models"
)

// Logger receives suite progress. Implementations must be safe for concurrent use.
type Logger interface {
	LogCaseStart(c models.TestCase)
	LogCaseResult(v models.Verdict) error
	LogProgress(done, total int)
	LogSummary(summary models.SuiteSummary)
	LogWarn(message string)
}

// CompilerInvoker runs the compiler-under-test for one case.
type CompilerInvoker interface {
	Invoke(ctx context.Context, c models.TestCase) (RunOutput, error)
}

// Orchestrator verifies a single test case: it invokes the compiler, selects
// the matcher for the case's mode and produces a Verdict.
type Orchestrator struct {
	invoker       CompilerInvoker
	contextRadius int
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(invoker CompilerInvoker, contextRadius int) *Orchestrator {
	if invoker == nil {
		panic("compiler invoker cannot be nil")
	}
	return &Orchestrator{
		invoker:       invoker,
		contextRadius: contextRadius,
	}
}

// RunCase verifies c. It never returns an error: every failure is folded into
// the returned Verdict.
func (o *Orchestrator) RunCase(ctx context.Context, c models.TestCase) models.Verdict {
	start := time.Now()
	v := o.runCase(ctx, c)
	v.Duration = time.Since(start)
	return v
}

func (o *Orchestrator) runCase(ctx context.Context, c models.TestCase) models.Verdict {
	set, err := expect.ParseFile(c.ExpectationPath, c.Mode)
	if err != nil {
		return models.FailVerdict(c, models.KindMalformedExpectation, err)
	}

	out, err := o.invoker.Invoke(ctx, c)
	if err != nil {
		kind := models.KindInvocationError
		if IsTimeoutError(err) {
			kind = models.KindTimeout
		}
		v := models.FailVerdict(c, kind, err)
		v.ExpectedText = set.Raw
		v.ActualText = channel(c.Mode, out)
		v.Stderr = out.Stderr
		return v
	}

	var v models.Verdict
	switch c.Mode {
	case models.ModeExact:
		v = o.verifyExact(c, set, out.Stdout)
	case models.ModeDirective:
		v = verifyDirectives(c, set, out.Stderr)
	default:
		return models.FailVerdict(c, models.KindMalformedExpectation,
			fmt.Errorf("%w: unsupported mode %v", expect.ErrMalformedExpectation, c.Mode))
	}
	v.ExpectedText = set.Raw
	v.ActualText = channel(c.Mode, out)
	v.Stderr = out.Stderr
	return v
}

// Output returns the raw output of the channel checked for c without
// verifying it.
func (o *Orchestrator) Output(ctx context.Context, c models.TestCase) (string, error) {
	out, err := o.invoker.Invoke(ctx, c)
	return channel(c.Mode, out), err
}

func (o *Orchestrator) verifyExact(c models.TestCase, set *models.ExpectationSet, stdout string) models.Verdict {
	actual := expect.SplitLines(stdout)
	res := matcher.CompareLines(set.Lines, actual, o.contextRadius)
	if res.Passed() {
		return models.PassVerdict(c)
	}

	v := models.FailVerdict(c, res.Kind, nil)
	v.FailureIndex = res.FailureIndex
	v.Context = res.Context
	v.ExpectedLen = len(set.Lines)
	v.ActualLen = len(actual)
	return v
}

func verifyDirectives(c models.TestCase, set *models.ExpectationSet, stderr string) models.Verdict {
	res := matcher.MatchDirectives(set.Directives, expect.SplitLines(stderr))
	if res.Passed() {
		return models.PassVerdict(c)
	}

	v := models.FailVerdict(c, res.Kind, nil)
	v.Directive = res.Directive
	v.DirectiveIndex = res.DirectiveIndex
	v.Cursor = res.Cursor
	v.Remaining = res.Remaining
	return v
}

// channel selects the stream checked in mode: stdout for exact mode,
// stderr for directive mode.
func channel(mode models.Mode, out RunOutput) string {
	if mode == models.ModeDirective {
		return out.Stderr
	}
	return out.Stdout
}
