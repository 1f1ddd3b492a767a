package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/chocotest/internal/display"
	"github.com/harrison/chocotest/internal/executor"
	"github.com/harrison/chocotest/internal/expect"
	"github.com/harrison/chocotest/internal/models"
	"github.com/harrison/chocotest/internal/report"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <test-file-or-directory>...",
		Short: "Check expectation files without running the compiler",
		Long: `Discover test cases and parse their expectation files, checking for:
  - Sources with both a .ast and a .err file (ambiguous)
  - Sources with no expectation file (excluded from runs)
  - Unreadable expectation files

Exit code: 0 if valid, non-zero if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return executor.NewConfigError("invalid configuration", err)
			}
			opts := executor.DiscoveryOptions{SourceExt: cfg.SourceExt, Recursive: cfg.Recursive}
			return validateWithOutput(args, opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("recursive", "r", false, "Descend into subdirectories of directory arguments")
	cmd.Flags().String("config", "", "Path to config file (default: .chocotest/config.yaml)")

	return cmd
}

// validateWithOutput validates expectation files with a custom output writer (for testing)
func validateWithOutput(paths []string, opts executor.DiscoveryOptions, output io.Writer) error {
	colorOutput := report.ColorEnabled(output)

	discovery, err := executor.Discover(paths, opts)
	if err != nil {
		var cfgErr *executor.ConfigError
		if errors.As(err, &cfgErr) && len(cfgErr.Files) > 0 {
			display.Warning{
				Title:      cfgErr.Message,
				Files:      cfgErr.Files,
				Suggestion: fmt.Sprintf("Keep exactly one of %s or %s per source", models.ASTSuffix, models.ErrSuffix),
			}.Display(output, colorOutput)
		}
		return err
	}

	if len(discovery.Excluded) > 0 {
		display.Warning{
			Title: "No expectation file",
			Message: fmt.Sprintf("These sources have neither %s nor %s and are excluded from runs",
				models.ASTSuffix, models.ErrSuffix),
			Files: discovery.Excluded,
		}.Display(output, colorOutput)
	}

	progress := display.NewProgressIndicator(output, len(discovery.Cases), "expectation files", colorOutput)
	var malformed []string
	for _, c := range discovery.Cases {
		set, err := expect.ParseFile(c.ExpectationPath, c.Mode)
		if err != nil {
			progress.Step(c.Source, err.Error())
			malformed = append(malformed, c.ExpectationPath)
			continue
		}
		progress.Step(c.Source, describeExpectation(set))
	}
	progress.Complete()

	if len(malformed) > 0 {
		return &executor.ConfigError{
			Message: fmt.Sprintf("%d expectation file(s) could not be read", len(malformed)),
			Files:   malformed,
		}
	}
	return nil
}

// describeExpectation summarises a parsed expectation in one phrase.
func describeExpectation(set *models.ExpectationSet) string {
	if set.Mode == models.ModeExact {
		return fmt.Sprintf("exact, %d lines", len(set.Lines))
	}

	anchored := 0
	for _, d := range set.Directives {
		if d.Binding == models.Anchored {
			anchored++
		}
	}
	return fmt.Sprintf("directive, %d directives (%d CHECK-NEXT)", len(set.Directives), anchored)
}
