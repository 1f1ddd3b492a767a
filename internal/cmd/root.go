package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for chocotest.
// The root command itself runs a suite; validate and history are subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chocotest [flags] <test-file-or-directory>...",
		Short: "Golden-output test oracle for the ChocoPy compiler",
		Long: `chocotest runs the ChocoPy compiler over test sources and checks its
output against recorded expectations.

A source with a <source>.ast file is checked in exact mode: the compiler's
AST dump (stdout) must match the file line by line, ignoring surrounding
whitespace. A source with a <source>.err file is checked in directive mode:
each "CHECK:" line must match some later diagnostic line and each
"CHECK-NEXT:" line must match the very next one (stderr).

Configuration is loaded from .chocotest/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  chocotest -e ./build/chocopy-llvm Test/Parser
  chocotest -e chocopy-llvm -r -v Test/
  chocotest -e chocopy-llvm -vv --dump_dir /tmp/failures Test/Sema/bad.py
  chocotest -e chocopy-llvm -j 8 --report results.html Test/`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		RunE:          runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRunFlags(cmd)

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
