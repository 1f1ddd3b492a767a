package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--help returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "chocotest") {
		t.Errorf("Help text should mention chocotest, got: %s", output)
	}
	for _, flag := range []string{"--executable", "--dump_dir", "--dump_only", "--verbose", "--jobs"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help text should list %s", flag)
		}
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	want := map[string]bool{"validate": false, "history": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Version != Version {
		t.Errorf("Version = %q, want %q", cmd.Version, Version)
	}
}

func TestVerboseFlagCounts(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{nil, 0},
		{[]string{"-v"}, 1},
		{[]string{"-vv"}, 2},
		{[]string{"-v", "-v", "-v"}, 3},
		{[]string{"--verbose=2"}, 2},
	}

	for _, tt := range tests {
		cmd := NewRootCommand()
		if err := cmd.ParseFlags(tt.args); err != nil {
			t.Fatalf("ParseFlags(%v): %v", tt.args, err)
		}
		got, _ := cmd.Flags().GetCount("verbose")
		if got != tt.want {
			t.Errorf("ParseFlags(%v) verbose = %d, want %d", tt.args, got, tt.want)
		}
	}
}
