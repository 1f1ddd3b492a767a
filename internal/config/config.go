package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults shared by the config file and the CLI.
const (
	DefaultASTDumpFlag    = "-ast-dump"
	DefaultDiagnosticFlag = "-run-sema"
	DefaultSourceExt      = ".py"
	DefaultTimeout        = 2 * time.Minute
	DefaultContextRadius  = 5
	DefaultKeepRuns       = 50
)

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every suite run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database; empty uses $CHOCOTEST_HOME/history.db
	DBPath string `yaml:"db_path"`

	// KeepRuns is the number of most recent runs retained (0 = keep all)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents chocotest configuration options
type Config struct {
	// Executable is the compiler under test
	Executable string `yaml:"executable"`

	// Flags are extra arguments appended to every invocation
	Flags []string `yaml:"flags"`

	// ASTDumpFlag selects exact (AST dump) mode on the compiler
	ASTDumpFlag string `yaml:"ast_dump_flag"`

	// DiagnosticFlag selects directive (diagnostic) mode on the compiler
	DiagnosticFlag string `yaml:"diagnostic_flag"`

	// StrictDiagnostics fails directive-mode cases whose compiler exits non-zero
	StrictDiagnostics bool `yaml:"strict_diagnostics"`

	// SourceExt is the extension of test sources when scanning directories
	SourceExt string `yaml:"source_ext"`

	// Recursive descends into subdirectories of directory arguments
	Recursive bool `yaml:"recursive"`

	// Timeout bounds one compiler invocation (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// ContextRadius is the number of lines shown around a mismatch
	ContextRadius int `yaml:"context_radius"`

	// Jobs is the number of cases verified concurrently
	Jobs int `yaml:"jobs"`

	// Verbosity is 0 (summary), 1 (case lines) or 2 (diagnostics)
	Verbosity int `yaml:"verbosity"`

	// LogLevel sets the levelled log threshold; empty derives it from Verbosity
	LogLevel string `yaml:"log_level"`

	// LogDir enables file logging to this directory when non-empty
	LogDir string `yaml:"log_dir"`

	// FailExit makes a suite with failures exit non-zero
	FailExit bool `yaml:"fail_exit"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ASTDumpFlag:    DefaultASTDumpFlag,
		DiagnosticFlag: DefaultDiagnosticFlag,
		SourceExt:      DefaultSourceExt,
		Timeout:        DefaultTimeout,
		ContextRadius:  DefaultContextRadius,
		Jobs:           1,
		History: HistoryConfig{
			Enabled:  false,
			KeepRuns: DefaultKeepRuns,
		},
	}
}

// yamlConfig mirrors Config with pointer fields so that keys present in the
// file override defaults even when set to their zero value.
type yamlConfig struct {
	Executable        *string   `yaml:"executable"`
	Flags             *[]string `yaml:"flags"`
	ASTDumpFlag       *string   `yaml:"ast_dump_flag"`
	DiagnosticFlag    *string   `yaml:"diagnostic_flag"`
	StrictDiagnostics *bool     `yaml:"strict_diagnostics"`
	SourceExt         *string   `yaml:"source_ext"`
	Recursive         *bool     `yaml:"recursive"`
	Timeout           *string   `yaml:"timeout"`
	ContextRadius     *int      `yaml:"context_radius"`
	Jobs              *int      `yaml:"jobs"`
	Verbosity         *int      `yaml:"verbosity"`
	LogLevel          *string   `yaml:"log_level"`
	LogDir            *string   `yaml:"log_dir"`
	FailExit          *bool     `yaml:"fail_exit"`
	History           *struct {
		Enabled  *bool   `yaml:"enabled"`
		DBPath   *string `yaml:"db_path"`
		KeepRuns *int    `yaml:"keep_runs"`
	} `yaml:"history"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&cfg.Executable, y.Executable)
	if y.Flags != nil {
		cfg.Flags = *y.Flags
	}
	setString(&cfg.ASTDumpFlag, y.ASTDumpFlag)
	setString(&cfg.DiagnosticFlag, y.DiagnosticFlag)
	setBool(&cfg.StrictDiagnostics, y.StrictDiagnostics)
	setString(&cfg.SourceExt, y.SourceExt)
	setBool(&cfg.Recursive, y.Recursive)
	if y.Timeout != nil {
		timeout, err := parseTimeout(*y.Timeout)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = timeout
	}
	setInt(&cfg.ContextRadius, y.ContextRadius)
	setInt(&cfg.Jobs, y.Jobs)
	setInt(&cfg.Verbosity, y.Verbosity)
	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogDir, y.LogDir)
	setBool(&cfg.FailExit, y.FailExit)

	if y.History != nil {
		setBool(&cfg.History.Enabled, y.History.Enabled)
		setString(&cfg.History.DBPath, y.History.DBPath)
		setInt(&cfg.History.KeepRuns, y.History.KeepRuns)
	}

	return cfg, nil
}

// parseTimeout accepts Go durations ("90s", "2m") and a bare "0".
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout format %q: %w", s, err)
	}
	return timeout, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// ConfigPath returns the default config file location under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".chocotest", "config.yaml")
}

// LoadConfigFromDir loads configuration from .chocotest/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(ConfigPath(dir))
}

// FlagOverrides carries CLI flag values. Nil fields were not given on the
// command line and leave the configuration untouched.
type FlagOverrides struct {
	Executable *string
	Flags      []string
	Recursive  *bool
	Timeout    *time.Duration
	Jobs       *int
	Verbosity  *int
	LogLevel   *string
	LogDir     *string
	FailExit   *bool
	History    *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// Extra flags from the command line are appended to the configured ones
func (c *Config) MergeWithFlags(f FlagOverrides) {
	setString(&c.Executable, f.Executable)
	if len(f.Flags) > 0 {
		c.Flags = append(append([]string{}, c.Flags...), f.Flags...)
	}
	setBool(&c.Recursive, f.Recursive)
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	setInt(&c.Jobs, f.Jobs)
	setInt(&c.Verbosity, f.Verbosity)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogDir, f.LogDir)
	setBool(&c.FailExit, f.FailExit)
	setBool(&c.History.Enabled, f.History)
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1, got %d", c.Jobs)
	}

	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must be >= 0, got %d", c.Verbosity)
	}

	if c.LogLevel != "" {
		validLevels := map[string]bool{
			"trace": true,
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[strings.ToLower(c.LogLevel)] {
			return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
		}
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if !strings.HasPrefix(c.SourceExt, ".") {
		return fmt.Errorf("source_ext must start with '.', got %q", c.SourceExt)
	}

	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}

	return nil
}

// ValidateForRun checks the settings that only matter when the compiler is
// actually invoked.
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Executable) == "" {
		return fmt.Errorf("no compiler executable configured (use -e or set executable in config)")
	}
	return nil
}
