package cmd

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/chocotest/internal/artifacts"
	"github.com/harrison/chocotest/internal/config"
	"github.com/harrison/chocotest/internal/executor"
	"github.com/harrison/chocotest/internal/history"
	"github.com/harrison/chocotest/internal/logger"
	"github.com/harrison/chocotest/internal/models"
	"github.com/harrison/chocotest/internal/report"
)

// addRunFlags registers the suite flags on the root command.
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("executable", "e", "", "ChocoPy compiler to test (path or name on PATH)")
	flags.Bool("dump", false, "Print expected and actual output for every case")
	flags.String("dump_dir", "", "Write source, expected and actual output of failing cases to this directory")
	flags.Bool("dump_only", false, "Print the compiler output for the first case and exit")
	flags.StringArrayP("flags", "f", nil, "Extra compiler flags (repeatable, split on whitespace)")
	flags.CountP("verbose", "v", "Verbosity: -v prints a line per case, -vv adds diagnostics (--verbose=N also accepted)")
	flags.BoolP("recursive", "r", false, "Descend into subdirectories of directory arguments")
	flags.IntP("jobs", "j", 0, "Number of cases verified concurrently (default from config, 1)")
	flags.Duration("timeout", 0, "Per-invocation timeout, e.g. 30s or 2m (0 disables)")
	flags.String("report", "", "Write a suite report (.md, .html or .json)")
	flags.Bool("history", false, "Record this run in the history database")
	flags.Bool("fail-exit", false, "Exit with status 1 when any test fails")
	flags.String("config", "", "Path to config file (default: .chocotest/config.yaml)")
	flags.String("log-dir", "", "Directory for run log files")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
}

// runCommand implements the suite run: load config, discover cases, verify
// them and report.
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateForRun(); err != nil {
		return executor.NewConfigError("invalid configuration", err)
	}
	if _, err := exec.LookPath(cfg.Executable); err != nil {
		return executor.NewConfigError(fmt.Sprintf("compiler executable not found: %s", cfg.Executable), err)
	}

	discovery, err := executor.Discover(args, executor.DiscoveryOptions{
		SourceExt: cfg.SourceExt,
		Recursive: cfg.Recursive,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dump, _ := cmd.Flags().GetBool("dump")
	console := logger.NewConsoleLogger(out, logger.ConsoleOptions{
		Verbosity: cfg.Verbosity,
		LogLevel:  cfg.LogLevel,
		Dump:      dump,
	})
	for _, w := range discovery.Warnings {
		console.LogWarn(w.Error())
	}
	for _, src := range discovery.Excluded {
		console.LogExcluded(src)
	}

	invoker := executor.NewInvoker(nil, executor.InvokerConfig{
		Executable:        cfg.Executable,
		ASTDumpFlag:       cfg.ASTDumpFlag,
		DiagnosticFlag:    cfg.DiagnosticFlag,
		ExtraFlags:        cfg.Flags,
		StrictDiagnostics: cfg.StrictDiagnostics,
		Timeout:           cfg.Timeout,
	})
	orchestrator := executor.NewOrchestrator(invoker, cfg.ContextRadius)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if dumpOnly, _ := cmd.Flags().GetBool("dump_only"); dumpOnly {
		return dumpFirst(ctx, orchestrator, discovery.Cases, out)
	}

	console.Print(runningHeader(len(discovery.Cases)))

	suiteLogger := logger.SuiteLogger(console)
	if cfg.LogDir != "" {
		fileLogger, err := logger.NewFileLoggerWithLevel(cfg.LogDir, fileLogLevel(cfg))
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLogger.Close()
		suiteLogger = logger.NewMultiLogger(console, fileLogger)
	}

	suite := executor.NewSuite(orchestrator, suiteLogger, cfg.Jobs)
	if dumpDir, _ := cmd.Flags().GetString("dump_dir"); dumpDir != "" {
		suite.SetArtifactWriter(artifacts.NewWriter(dumpDir))
	}

	summary, runErr := suite.Run(ctx, discovery.Cases)
	if summary == nil {
		return runErr
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, *summary); err != nil {
			console.LogWarn(fmt.Sprintf("failed to record history: %v", err))
		}
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := report.WriteFile(reportPath, *summary); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("suite interrupted: %w", runErr)
	}
	if cfg.FailExit && summary.Failed() > 0 {
		return executor.ErrTestsFailed
	}
	return nil
}

// loadConfig reads the config file (explicit --config or the default
// location) and applies the flags that were set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, executor.NewConfigError(fmt.Sprintf("failed to load config from %s", configPath), err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, executor.NewConfigError("failed to load config", err)
		}
	}

	cfg.MergeWithFlags(flagOverrides(cmd))
	return cfg, nil
}

// flagOverrides collects the flags that were explicitly set.
func flagOverrides(cmd *cobra.Command) config.FlagOverrides {
	flags := cmd.Flags()
	var o config.FlagOverrides

	if flags.Changed("executable") {
		v, _ := flags.GetString("executable")
		o.Executable = &v
	}
	if raw, _ := flags.GetStringArray("flags"); len(raw) > 0 {
		o.Flags = splitFlags(raw)
	}
	if flags.Changed("recursive") {
		v, _ := flags.GetBool("recursive")
		o.Recursive = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		o.Timeout = &v
	}
	if flags.Changed("jobs") {
		v, _ := flags.GetInt("jobs")
		o.Jobs = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetCount("verbose")
		o.Verbosity = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		o.LogDir = &v
	}
	if flags.Changed("fail-exit") {
		v, _ := flags.GetBool("fail-exit")
		o.FailExit = &v
	}
	if flags.Changed("history") {
		v, _ := flags.GetBool("history")
		o.History = &v
	}
	return o
}

// splitFlags splits every -f value on whitespace so that
// -f "-O2 -g" forwards two arguments.
func splitFlags(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}

func runningHeader(n int) string {
	if n == 1 {
		return "Running 1 test"
	}
	return fmt.Sprintf("Running %d tests", n)
}

// fileLogLevel keeps the run log at least at info so that verdicts are
// always recorded.
func fileLogLevel(cfg *config.Config) string {
	if cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return logger.LevelForVerbosity(cfg.Verbosity)
}

// dumpFirst writes the raw checked channel of the first case and returns.
func dumpFirst(ctx context.Context, o *executor.Orchestrator, cases []models.TestCase, out io.Writer) error {
	if len(cases) == 0 {
		return nil
	}
	text, err := o.Output(ctx, cases[0])
	if err != nil && !executor.IsInvocationError(err) {
		return err
	}
	_, writeErr := io.WriteString(out, text)
	if writeErr != nil {
		return writeErr
	}
	return err
}

func recordHistory(ctx context.Context, cfg *config.Config, summary models.SuiteSummary) error {
	dbPath, err := config.GetHistoryDBPath(cfg.History.DBPath)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Record even if the suite was interrupted.
	ctx = context.WithoutCancel(ctx)
	recordCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := store.RecordRun(recordCtx, summary, cfg.Executable); err != nil {
		return err
	}
	_, err = store.Prune(recordCtx, cfg.History.KeepRuns)
	return err
}

// ExitCode maps an error returned by the root command to a process exit
// status: 0 for nil, 2 for configuration errors, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case executor.IsConfigError(err):
		return 2
	default:
		return 1
	}
}
