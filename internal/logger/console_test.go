package logger

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/chocotest/internal/models"
)

func plain(verbosity int) ConsoleOptions {
	off := false
	return ConsoleOptions{Verbosity: verbosity, Color: &off}
}

func passVerdict(src string) models.Verdict {
	return models.PassVerdict(models.TestCase{Source: src, Mode: models.ModeExact})
}

func failVerdict(src string) models.Verdict {
	v := models.FailVerdict(models.TestCase{Source: src, ExpectationPath: src + ".ast", Mode: models.ModeExact}, models.KindLengthMismatch, nil)
	v.ExpectedLen = 2
	v.ActualLen = 1
	v.ExpectedText = "a\nb\n"
	v.ActualText = "a\n"
	return v
}

func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, plain(0))
		require.NotNil(t, logger)
		assert.Equal(t, "info", logger.logLevel)
		assert.False(t, logger.colorOutput, "buffers never get colour")
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, plain(2))
		require.NotNil(t, logger)
		assert.NoError(t, logger.LogCaseResult(failVerdict("a.py")))
		logger.LogSummary(models.SuiteSummary{})
		logger.LogWarn("ignored")
	})

	t.Run("explicit level wins over verbosity", func(t *testing.T) {
		opts := plain(0)
		opts.LogLevel = "ERROR"
		assert.Equal(t, "error", NewConsoleLogger(&bytes.Buffer{}, opts).logLevel)
	})
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, "info", LevelForVerbosity(0))
	assert.Equal(t, "info", LevelForVerbosity(1))
	assert.Equal(t, "debug", LevelForVerbosity(2))
	assert.Equal(t, "trace", LevelForVerbosity(3))
}

func TestIsValidLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", " WARN "} {
		assert.True(t, IsValidLogLevel(level), level)
	}
	for _, level := range []string{"", "verbose", "fatal"} {
		assert.False(t, IsValidLogLevel(level), level)
	}
}

func TestVerbosityTiers(t *testing.T) {
	tests := []struct {
		name        string
		verbosity   int
		contains    []string
		notContains []string
	}{
		{
			name:        "summary only",
			verbosity:   0,
			contains:    []string{"1/2 tests passed"},
			notContains: []string{"Pass:", "Fail:", "Expected 2 lines"},
		},
		{
			name:        "case lines",
			verbosity:   1,
			contains:    []string{"Pass: good.py", "Fail: bad.py (length_mismatch)", "1/2 tests passed"},
			notContains: []string{"Expected 2 lines"},
		},
		{
			name:      "diagnostics",
			verbosity: 2,
			contains:  []string{"Pass: good.py", "Fail: bad.py", "Expected 2 lines, got 1 for bad.py", "1/2 tests passed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, plain(tt.verbosity))

			require.NoError(t, logger.LogCaseResult(passVerdict("good.py")))
			require.NoError(t, logger.LogCaseResult(failVerdict("bad.py")))
			logger.LogSummary(models.SuiteSummary{Total: 2, Passed: 1})

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSummaryLineIsLast(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, plain(1))
	require.NoError(t, logger.LogCaseResult(passVerdict("a.py")))
	logger.LogSummary(models.SuiteSummary{Total: 1, Passed: 1})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "1/1 tests passed", lines[len(lines)-1])
}

func TestLogCaseResultDump(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := plain(0)
	opts.Dump = true
	logger := NewConsoleLogger(buf, opts)

	require.NoError(t, logger.LogCaseResult(failVerdict("bad.py")))
	assert.Equal(t, "Expected (bad.py.ast):\na\nb\nGot:\na\n", buf.String())
}

func TestLogExcluded(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, plain(1)).LogExcluded("x.py")
	assert.Empty(t, buf.String())

	NewConsoleLogger(buf, plain(2)).LogExcluded("x.py")
	assert.Equal(t, "No expectation file for x.py\n", buf.String())
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := plain(0)
	opts.LogLevel = "warn"
	logger := NewConsoleLogger(buf, opts)

	logger.LogTrace("t")
	logger.LogDebug("d")
	logger.LogInfo("i")
	logger.LogWarn("careful")
	logger.LogError("broken")

	out := buf.String()
	assert.NotContains(t, out, "[TRACE]")
	assert.NotContains(t, out, "[DEBUG]")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[ERROR] broken")
}

func TestLogProgressAtTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, plain(1)).LogProgress(1, 2)
	assert.Empty(t, buf.String())

	NewConsoleLogger(buf, plain(3)).LogProgress(1, 2)
	assert.Contains(t, buf.String(), "[TRACE] Progress: [=====     ] 1/2 (50%)")
}

func TestColorOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	on := true
	logger := NewConsoleLogger(buf, ConsoleOptions{Verbosity: 1, Color: &on})
	logger.LogWarn("w")
	require.NoError(t, logger.LogCaseResult(passVerdict("a.py")))
	assert.Contains(t, buf.String(), "\033[")
}

func TestPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, plain(0)).Print("Running 3 tests")
	assert.Equal(t, "Running 3 tests\n", buf.String())
}

func TestConcurrentCaseResultsDoNotInterleave(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, plain(2))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = logger.LogCaseResult(failVerdict(fmt.Sprintf("case%d.py", n)))
		}(i)
	}
	wg.Wait()

	out := buf.String()
	for i := 0; i < 20; i++ {
		block := fmt.Sprintf("Fail: case%d.py (length_mismatch)\nExpected 2 lines, got 1 for case%d.py\n", i, i)
		assert.Contains(t, out, block)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestLogCaseResultWriteError(t *testing.T) {
	logger := NewConsoleLogger(failingWriter{}, plain(1))
	assert.Error(t, logger.LogCaseResult(passVerdict("a.py")))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogCaseStart(models.TestCase{})
	assert.NoError(t, n.LogCaseResult(models.Verdict{}))
	n.LogProgress(1, 1)
	n.LogSummary(models.SuiteSummary{})
	n.LogWarn("x")
}
