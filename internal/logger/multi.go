package logger

import (
	"errors"

	"github.com/harrison/chocotest/internal/models"
)

// SuiteLogger is the set of events a suite reports. It mirrors
// executor.Logger so this package does not import the executor.
type SuiteLogger interface {
	LogCaseStart(c models.TestCase)
	LogCaseResult(v models.Verdict) error
	LogProgress(done, total int)
	LogSummary(summary models.SuiteSummary)
	LogWarn(message string)
}

// MultiLogger fans every event out to several loggers.
type MultiLogger struct {
	loggers []SuiteLogger
}

// NewMultiLogger combines loggers. nil entries are skipped.
func NewMultiLogger(loggers ...SuiteLogger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogCaseStart(c models.TestCase) {
	for _, l := range m.loggers {
		l.LogCaseStart(c)
	}
}

// LogCaseResult forwards to every logger and joins their errors.
func (m *MultiLogger) LogCaseResult(v models.Verdict) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.LogCaseResult(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) LogProgress(done, total int) {
	for _, l := range m.loggers {
		l.LogProgress(done, total)
	}
}

func (m *MultiLogger) LogSummary(summary models.SuiteSummary) {
	for _, l := range m.loggers {
		l.LogSummary(summary)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}
