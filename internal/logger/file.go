package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/chocotest/internal/models"
	"github.com/harrison/chocotest/internal/report"
)

// FileLogger logs suite events to files in a log directory.
// It creates a timestamped run log, one detailed log per failing case under
// cases/, and maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and implements the executor.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	casesDir string
	logLevel string
	reporter *report.Reporter
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir with level "info".
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates a FileLogger with a custom log level.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	casesDir := filepath.Join(logDir, "cases")
	if err := os.MkdirAll(casesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cases directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log; the nanosecond suffix keeps rapid successive
	// runs from sharing a file.
	now := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s-%09d.log", now.Format("20060102-150405"), now.Nanosecond()))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		casesDir: casesDir,
		logLevel: normalizeLogLevel(logLevel),
		reporter: report.New(false),
	}

	logger.writeRunLog("=== chocotest run log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", now.Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCaseStart records the start of a case at DEBUG level.
func (fl *FileLogger) LogCaseStart(c models.TestCase) {
	fl.LogDebug(fmt.Sprintf("Running %s (%s)", c.Source, c.Mode))
}

// LogCaseResult records the verdict in the run log. Failing cases also get
// a detailed log in cases/<name>.log with the diagnostic and captured output.
func (fl *FileLogger) LogCaseResult(v models.Verdict) error {
	if fl.shouldLog("info") {
		fl.writeRunLog(fmt.Sprintf("[%s] %s [%s]\n", timestamp(), fl.reporter.CaseLine(v), formatDuration(v.Duration)))
	}
	if v.Passed() {
		return nil
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	casePath := filepath.Join(fl.casesDir, filepath.Base(v.Case.Source)+".log")
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", v.Case.Source)
	fmt.Fprintf(&sb, "Mode: %s\n", v.Case.Mode)
	fmt.Fprintf(&sb, "Outcome: %s (%s)\n", v.Outcome, v.Kind)
	fmt.Fprintf(&sb, "Duration: %s\n\n", formatDuration(v.Duration))
	sb.WriteString(fl.reporter.Diagnostic(v))
	sb.WriteString("\n")
	sb.WriteString(fl.reporter.Dump(v))
	if v.Stderr != "" {
		fmt.Fprintf(&sb, "\nStderr:\n%s", ensureNewline(v.Stderr))
	}
	fmt.Fprintf(&sb, "\nCompleted at: %s\n", time.Now().Format(time.RFC3339))

	if err := os.WriteFile(casePath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write case log: %w", err)
	}
	return nil
}

// LogProgress is a no-op; progress bars are console-only.
func (fl *FileLogger) LogProgress(done, total int) {}

// LogSummary records the suite totals at INFO level.
func (fl *FileLogger) LogSummary(summary models.SuiteSummary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	status := "SUCCESS"
	if summary.Failed() > 0 {
		status = "FAILED"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n[%s] === SUITE SUMMARY ===\n", ts)
	fmt.Fprintf(&sb, "[%s] Run ID:       %s\n", ts, summary.RunID)
	fmt.Fprintf(&sb, "[%s] Total:        %d\n", ts, summary.Total)
	fmt.Fprintf(&sb, "[%s] Passed:       %d\n", ts, summary.Passed)
	fmt.Fprintf(&sb, "[%s] Failed:       %d\n", ts, summary.Failed())
	fmt.Fprintf(&sb, "[%s] Total time:   %.1fs\n", ts, summary.Duration.Seconds())
	fmt.Fprintf(&sb, "[%s] Status:       %s (%d/%d tests passed)\n", ts, status, summary.Passed, summary.Total)
	fmt.Fprintf(&sb, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))
	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
