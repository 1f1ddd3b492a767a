package models

import "time"

// Outcome is the pass/fail result of a test case.
type Outcome string

// Verdict outcome constants
const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

// FailureKind classifies why a verdict failed.
type FailureKind string

// Failure kind constants
const (
	KindNone                 FailureKind = ""
	KindContentMismatch      FailureKind = "content_mismatch"      // Exact mode: a trimmed line differs
	KindLengthMismatch       FailureKind = "length_mismatch"       // Exact mode: prefix matches, lengths differ
	KindDirectiveMismatch    FailureKind = "directive_mismatch"    // CHECK-NEXT saw a different line
	KindDirectiveExhausted   FailureKind = "directive_exhausted"   // Cursor ran past the end of output
	KindInvocationError      FailureKind = "invocation_error"      // Compiler failed to spawn or exited non-zero
	KindTimeout              FailureKind = "timeout"               // Compiler exceeded the invocation timeout
	KindMalformedExpectation FailureKind = "malformed_expectation" // Expectation file unreadable
)

// ContextWindow holds the expected and actual lines around a divergence.
// Both slices begin at Start; each is clipped to its own sequence bounds.
type ContextWindow struct {
	Start    int      // Index of the first line in both slices
	Focus    int      // Index of the diverging line
	Expected []string // expected[Start:...]
	Actual   []string // actual[Start:...]
}

// Verdict is the immutable result of verifying one test case.
type Verdict struct {
	Case    TestCase
	Outcome Outcome
	Kind    FailureKind

	// Exact mode
	FailureIndex int            // -1 when not applicable
	Context      *ContextWindow // Lines around FailureIndex
	ExpectedLen  int
	ActualLen    int

	// Directive mode
	Directive      *Directive // The directive that could not be satisfied
	DirectiveIndex int        // Index of Directive in the expectation, -1 when not applicable
	Cursor         int        // Cursor position when matching stopped
	Remaining      []string   // Unconsumed output lines from Cursor onward

	Err          error         // Invocation or expectation error, if any
	ExpectedText string        // Raw expectation file content
	ActualText   string        // Raw output of the checked channel
	Stderr       string        // Raw diagnostic output of the compiler
	Duration     time.Duration // Time taken to invoke and verify
}

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool {
	return v.Outcome == OutcomePass
}

// PassVerdict builds a passing verdict for a case.
func PassVerdict(c TestCase) Verdict {
	return Verdict{
		Case:           c,
		Outcome:        OutcomePass,
		FailureIndex:   -1,
		DirectiveIndex: -1,
	}
}

// FailVerdict builds a failing verdict of the given kind.
func FailVerdict(c TestCase, kind FailureKind, err error) Verdict {
	return Verdict{
		Case:           c,
		Outcome:        OutcomeFail,
		Kind:           kind,
		FailureIndex:   -1,
		DirectiveIndex: -1,
		Err:            err,
	}
}

// SuiteSummary is the aggregate result of running a suite.
type SuiteSummary struct {
	RunID     string        // Unique identifier of the run
	Total     int           // Number of cases run
	Passed    int           // Number of passing cases
	Verdicts  []Verdict     // Per-case verdicts in file order
	Duration  time.Duration // Total run time
	StartedAt time.Time
}

// Failed returns the number of failing cases.
func (s SuiteSummary) Failed() int {
	return s.Total - s.Passed
}

// FailedVerdicts returns the failing verdicts in file order.
func (s SuiteSummary) FailedVerdicts() []Verdict {
	var failed []Verdict
	for _, v := range s.Verdicts {
		if !v.Passed() {
			failed = append(failed, v)
		}
	}
	return failed
}
