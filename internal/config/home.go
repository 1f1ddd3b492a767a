package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that relocates chocotest state.
const HomeEnv = "CHOCOTEST_HOME"

// GetHome returns the chocotest state directory
// Priority order:
//  1. CHOCOTEST_HOME environment variable (if set)
//  2. .chocotest in the current working directory
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".chocotest")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create chocotest home directory: %w", err)
	}
	return home, nil
}

// GetHistoryDBPath returns the history database path
// An explicit configured path wins; otherwise $CHOCOTEST_HOME/history.db
func GetHistoryDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
