// Package logger provides logging implementations for chocotest runs.
//
// Loggers receive suite events (case start, case verdict, progress, summary)
// from the executor. Implementations are thread-safe and support various
// output destinations (console, file).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/harrison/chocotest/internal/models"
	"github.com/harrison/chocotest/internal/report"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Verbosity tiers of the console output.
const (
	VerbositySummary    = 0 // final summary line only
	VerbosityCaseLines  = 1 // adds one Pass:/Fail: line per case
	VerbosityDiagnostic = 2 // adds failure diagnostics and exclusion notices
)

// ConsoleOptions configures a ConsoleLogger.
type ConsoleOptions struct {
	// Verbosity selects how much per-case output is written.
	Verbosity int
	// LogLevel is the minimum level for levelled messages. Empty derives it
	// from Verbosity.
	LogLevel string
	// Dump prints expected and actual text for every case.
	Dump bool
	// Color forces colour on or off. nil detects it from the writer.
	Color *bool
}

// ConsoleLogger writes suite results to a writer.
//
// Case lines, diagnostics and the summary are written plain, exactly as a
// user reads them. Levelled messages (warnings, debug, trace) are prefixed
// with [HH:MM:SS] [LEVEL]. Every event is rendered into one string and
// written in a single call under the mutex, so parallel cases never
// interleave their output.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	verbosity   int
	dump        bool
	mutex       sync.Mutex
	colorOutput bool
	reporter    *report.Reporter
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
func NewConsoleLogger(writer io.Writer, opts ConsoleOptions) *ConsoleLogger {
	useColor := isTerminal(writer)
	if opts.Color != nil {
		useColor = *opts.Color
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = LevelForVerbosity(opts.Verbosity)
	}

	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(level),
		verbosity:   opts.Verbosity,
		dump:        opts.Dump,
		colorOutput: useColor,
		reporter:    report.New(useColor),
	}
}

// LevelForVerbosity maps a verbosity count to a log level: 0 and 1 give
// "info", 2 gives "debug", anything higher "trace".
func LevelForVerbosity(verbosity int) string {
	switch {
	case verbosity >= 3:
		return "trace"
	case verbosity == 2:
		return "debug"
	default:
		return "info"
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		return report.ColorEnabled(w)
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// IsValidLogLevel reports whether level names a known log level.
func IsValidLogLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(normalized) == normalized
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message.
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.write(formatted)
}

// Print writes text verbatim. It is used for the run header and other
// lines that are part of the tool's normal output.
func (cl *ConsoleLogger) Print(text string) {
	if cl.writer == nil {
		return
	}
	cl.write(ensureNewline(text))
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

// LogCaseStart logs the start of a case at TRACE level.
func (cl *ConsoleLogger) LogCaseStart(c models.TestCase) {
	cl.LogTrace(fmt.Sprintf("Running %s (%s)", c.Source, c.Mode))
}

// LogCaseResult writes the per-case output allowed by the verbosity: the
// Pass:/Fail: line at 1 and above, the failure diagnostic at 2 and above,
// and the expected/actual dump when dumping is enabled.
func (cl *ConsoleLogger) LogCaseResult(v models.Verdict) error {
	if cl.writer == nil {
		return nil
	}

	var sb strings.Builder
	if cl.verbosity >= VerbosityCaseLines {
		sb.WriteString(cl.reporter.CaseLine(v))
		sb.WriteString("\n")
	}
	if cl.verbosity >= VerbosityDiagnostic && !v.Passed() {
		sb.WriteString(cl.reporter.Diagnostic(v))
	}
	if cl.dump {
		sb.WriteString(cl.reporter.Dump(v))
	}
	if sb.Len() == 0 {
		return nil
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	_, err := cl.writer.Write([]byte(sb.String()))
	return err
}

// LogExcluded reports a source skipped for lack of an expectation file.
// Only shown at diagnostic verbosity.
func (cl *ConsoleLogger) LogExcluded(source string) {
	if cl.writer == nil || cl.verbosity < VerbosityDiagnostic {
		return
	}
	cl.write(fmt.Sprintf("No expectation file for %s\n", source))
}

// LogProgress logs suite progress at TRACE level.
// Format: "[HH:MM:SS] [TRACE] Progress: [=====     ] 5/10 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl.writer == nil || !cl.shouldLog("trace") {
		return
	}
	pb := NewProgressBar(total, 10, false)
	pb.Update(done)
	cl.LogTrace("Progress: " + pb.Render())
}

// LogSummary writes the final "<passed>/<total> tests passed" line. It is
// written at every verbosity. At debug level the duration follows.
func (cl *ConsoleLogger) LogSummary(summary models.SuiteSummary) {
	if cl.writer == nil {
		return
	}
	cl.write(cl.reporter.SummaryLine(summary) + "\n")
	cl.LogDebug(fmt.Sprintf("Run %s finished in %s", summary.RunID, formatDuration(summary.Duration)))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogCaseStart is a no-op implementation.
func (n *NoOpLogger) LogCaseStart(c models.TestCase) {}

// LogCaseResult is a no-op implementation.
func (n *NoOpLogger) LogCaseResult(v models.Verdict) error { return nil }

// LogProgress is a no-op implementation.
func (n *NoOpLogger) LogProgress(done, total int) {}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(summary models.SuiteSummary) {}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {}
