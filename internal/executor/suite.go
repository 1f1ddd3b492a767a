package executor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/chocotest/internal/models"
)

// CaseRunner verifies a single test case.
type CaseRunner interface {
	RunCase(ctx context.Context, c models.TestCase) models.Verdict
}

// ArtifactWriter persists the expected and actual output of a failing case.
type ArtifactWriter interface {
	WriteFailure(v models.Verdict) error
}

// Suite runs test cases and aggregates their verdicts into a SuiteSummary.
type Suite struct {
	runner    CaseRunner
	logger    Logger
	artifacts ArtifactWriter
	jobs      int
}

// NewSuite constructs a Suite. The logger is optional and can be nil.
// jobs <= 1 runs cases sequentially in file order.
func NewSuite(runner CaseRunner, logger Logger, jobs int) *Suite {
	if jobs < 1 {
		jobs = 1
	}
	return &Suite{
		runner: runner,
		logger: logger,
		jobs:   jobs,
	}
}

// SetArtifactWriter enables dumping of failing cases.
func (s *Suite) SetArtifactWriter(w ArtifactWriter) {
	s.artifacts = w
}

// Run verifies every case and returns the summary. Individual failures never
// abort the run. If ctx is cancelled, cases not yet started are skipped and the
// summary covers only the cases that ran; ctx.Err() is returned alongside it.
func (s *Suite) Run(ctx context.Context, cases []models.TestCase) (*models.SuiteSummary, error) {
	if s == nil || s.runner == nil {
		return nil, fmt.Errorf("suite runner is required")
	}

	startTime := time.Now()
	verdicts := make([]models.Verdict, len(cases))
	ran := make([]bool, len(cases))
	var done int32

	var g errgroup.Group
	g.SetLimit(s.jobs)

	var launchErr error
	for i := range cases {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}

		g.Go(func() error {
			c := cases[i]
			if s.logger != nil {
				s.logger.LogCaseStart(c)
			}

			v := s.runner.RunCase(ctx, c)
			if !v.Passed() && s.artifacts != nil {
				if err := s.artifacts.WriteFailure(v); err != nil && s.logger != nil {
					s.logger.LogWarn(fmt.Sprintf("failed to dump artifacts for %s: %v", c.Source, err))
				}
			}

			// Each goroutine owns its slot; the reduction happens after Wait.
			verdicts[i] = v
			ran[i] = true

			n := atomic.AddInt32(&done, 1)
			if s.logger != nil {
				if logErr := s.logger.LogCaseResult(v); logErr != nil {
					s.logger.LogWarn(fmt.Sprintf("failed to log result for %s: %v", c.Source, logErr))
				}
				s.logger.LogProgress(int(n), len(cases))
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := &models.SuiteSummary{
		RunID:     uuid.NewString(),
		StartedAt: startTime,
		Verdicts:  make([]models.Verdict, 0, len(cases)),
	}
	for i := range cases {
		if !ran[i] {
			continue
		}
		summary.Verdicts = append(summary.Verdicts, verdicts[i])
		summary.Total++
		if verdicts[i].Passed() {
			summary.Passed++
		}
	}
	summary.Duration = time.Since(startTime)

	if s.logger != nil {
		s.logger.LogSummary(*summary)
	}

	if launchErr == nil {
		launchErr = ctx.Err()
	}
	return summary, launchErr
}
