package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/chocotest/internal/cmd"
	"github.com/harrison/chocotest/internal/executor"
)

// Version is the current version of the chocotest application
const Version = "1.0.0"

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Failing tests under --fail-exit are already reported by the summary.
		if !errors.Is(err, executor.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
