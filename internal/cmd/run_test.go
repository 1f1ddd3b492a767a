package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/chocotest/internal/executor"
)

// fakeCompiler is a shell script standing in for chocopy-llvm. In AST-dump
// mode it prints <source>.out to stdout; in sema mode it prints
// <source>.diag to stderr and exits 1 like a compiler reporting errors.
const fakeCompiler = `#!/bin/sh
src="$1"
mode="$2"
case "$mode" in
  -ast-dump)
    cat "$src.out"
    ;;
  -run-sema)
    cat "$src.diag" >&2
    exit 1
    ;;
  *)
    echo "unknown mode $mode" >&2
    exit 3
    ;;
esac
`

type fixture struct {
	dir      string
	compiler string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a POSIX shell script")
	}

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CHOCOTEST_HOME", filepath.Join(dir, "state"))

	compiler := filepath.Join(dir, "fake-chocopy")
	require.NoError(t, os.WriteFile(compiler, []byte(fakeCompiler), 0755))
	return &fixture{dir: dir, compiler: compiler}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// exactCase creates a source whose compiler output is actual and whose
// expectation is expected.
func (f *fixture) exactCase(t *testing.T, name, expected, actual string) string {
	src := f.write(t, name, "x:int = 1\n")
	f.write(t, name+".ast", expected)
	f.write(t, name+".out", actual)
	return src
}

func (f *fixture) directiveCase(t *testing.T, name, directives, diagnostics string) string {
	src := f.write(t, name, "x:int = True\n")
	f.write(t, name+".err", directives)
	f.write(t, name+".diag", diagnostics)
	return src
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRunExactMode(t *testing.T) {
	f := newFixture(t)
	good := f.exactCase(t, "good.py", "Program\n  Var x\n", "Program\n    Var x   \n")
	bad := f.exactCase(t, "bad.py", "Program\n  Var x\n", "Program\n  Var y\n")

	out, err := executeRoot(t, "-e", f.compiler, "-v", good, bad)
	require.NoError(t, err, "failing tests exit zero by default")

	assert.Contains(t, out, "Running 2 tests\n")
	assert.Contains(t, out, "Pass: "+good)
	assert.Contains(t, out, "Fail: "+bad+" (content_mismatch)")
	assert.True(t, strings.HasSuffix(out, "1/2 tests passed\n"), out)
	assert.NotContains(t, out, "Line 1 does not match", "diagnostics need -vv")
}

func TestRunDiagnosticsAtVerbosityTwo(t *testing.T) {
	f := newFixture(t)
	bad := f.exactCase(t, "bad.py", "Program\n  Var x\n", "Program\n  Var y\n")

	out, err := executeRoot(t, "-e", f.compiler, "--verbose=2", bad)
	require.NoError(t, err)
	assert.Contains(t, out, "Line 1 does not match for "+bad)
	assert.Contains(t, out, "Expected:\n")
	assert.Contains(t, out, "->   1   Var x")
	assert.Contains(t, out, "->   1   Var y")
}

func TestRunDirectiveModeIsLenientOnExitCode(t *testing.T) {
	f := newFixture(t)
	src := f.directiveCase(t, "sema.py",
		"CHECK: Type mismatch\nCHECK-NEXT: note: declared here\n",
		"warning: unused\nType mismatch\nnote: declared here\n")

	out, err := executeRoot(t, "-e", f.compiler, "-v", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Running 1 test\n")
	assert.Contains(t, out, "Pass: "+src)
	assert.Contains(t, out, "1/1 tests passed")
}

func TestRunDirectiveMismatch(t *testing.T) {
	f := newFixture(t)
	src := f.directiveCase(t, "sema.py",
		"CHECK: Type mismatch\nCHECK-NEXT: note: declared here\n",
		"Type mismatch\nsomething else\nnote: declared here\n")

	out, err := executeRoot(t, "-e", f.compiler, "-vv", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Fail: "+src+" (directive_mismatch)")
	assert.Contains(t, out, "CHECK-NEXT: note: declared here")
	assert.Contains(t, out, "0/1 tests passed")
}

func TestRunFailExit(t *testing.T) {
	f := newFixture(t)
	bad := f.exactCase(t, "bad.py", "a\n", "b\n")

	out, err := executeRoot(t, "-e", f.compiler, "--fail-exit", bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, executor.ErrTestsFailed))
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, out, "0/1 tests passed")
}

func TestRunConfigurationErrors(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "x\n", "x\n")
	f.write(t, "both.py", "")
	f.write(t, "both.py.ast", "")
	f.write(t, "both.py.err", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no executable", []string{src}, "no compiler executable configured"},
		{"missing executable", []string{"-e", filepath.Join(f.dir, "nope"), src}, "compiler executable not found"},
		{"no test files", []string{"-e", f.compiler}, "no test files specified"},
		{"ambiguous expectations", []string{"-e", f.compiler, filepath.Join(f.dir, "both.py")}, "have both .ast and .err"},
		{"bad jobs", []string{"-e", f.compiler, "-j", "0", src}, "jobs must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, executor.IsConfigError(err), "want ConfigError, got %T", err)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestRunDirectoryAndExclusion(t *testing.T) {
	f := newFixture(t)
	f.exactCase(t, "tests/a.py", "x\n", "x\n")
	f.exactCase(t, "tests/nested/b.py", "y\n", "y\n")
	f.write(t, "tests/orphan.py", "pass\n")

	out, err := executeRoot(t, "-e", f.compiler, "-vv", "tests")
	require.NoError(t, err)
	assert.Contains(t, out, "No expectation file for "+filepath.Join("tests", "orphan.py"))
	assert.Contains(t, out, "Running 1 test\n")
	assert.Contains(t, out, "1/1 tests passed")

	out, err = executeRoot(t, "-e", f.compiler, "-r", "tests")
	require.NoError(t, err)
	assert.Contains(t, out, "Running 2 tests\n")
	assert.Contains(t, out, "2/2 tests passed")
}

func TestRunDumpOnly(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "expected\n", "raw compiler output\n")

	out, err := executeRoot(t, "-e", f.compiler, "--dump_only", src)
	require.NoError(t, err)
	assert.Equal(t, "raw compiler output\n", out)
}

func TestRunDump(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "one\n", "one\n")

	out, err := executeRoot(t, "-e", f.compiler, "--dump", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Expected (a.py.ast):\none\nGot:\none\n")
}

func TestRunDumpDir(t *testing.T) {
	f := newFixture(t)
	good := f.exactCase(t, "good.py", "x\n", "x\n")
	bad := f.exactCase(t, "bad.py", "x\n", "y\n")
	dumpDir := filepath.Join(f.dir, "dumps")

	_, err := executeRoot(t, "-e", f.compiler, "--dump_dir", dumpDir, good, bad)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dumpDir, "bad.py"))
	expected, err := os.ReadFile(filepath.Join(dumpDir, "bad.py.expected"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(expected))
	actual, err := os.ReadFile(filepath.Join(dumpDir, "bad.py.actual"))
	require.NoError(t, err)
	assert.Equal(t, "y\n", string(actual))
	assert.NoFileExists(t, filepath.Join(dumpDir, "good.py"))
}

func TestRunParallelJobs(t *testing.T) {
	f := newFixture(t)
	var args []string
	args = append(args, "-e", f.compiler, "-j", "4", "-v")
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py", "e.py"} {
		args = append(args, f.exactCase(t, name, "same\n", "same\n"))
	}

	out, err := executeRoot(t, args...)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "Pass: "))
	assert.Contains(t, out, "5/5 tests passed")
}

func TestRunJSONReport(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "x\n", "y\n")
	reportPath := filepath.Join(f.dir, "out", "report.json")

	_, err := executeRoot(t, "-e", f.compiler, "--report", reportPath, src)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 1, decoded["total"])
	assert.EqualValues(t, 0, decoded["passed"])
}

func TestRunConfigFile(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "x\n", "x\n")
	f.write(t, ".chocotest/config.yaml", "executable: "+f.compiler+"\nverbosity: 1\n")

	out, err := executeRoot(t, src)
	require.NoError(t, err)
	assert.Contains(t, out, "Pass: "+src)
}

func TestRunLogDir(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "x\n", "y\n")
	logDir := filepath.Join(f.dir, "logs")

	_, err := executeRoot(t, "-e", f.compiler, "--log-dir", logDir, src)
	require.NoError(t, err)

	runLog, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "Fail: "+src)
	assert.FileExists(t, filepath.Join(logDir, "cases", "a.py.log"))
}

func TestRunHistoryAndHistoryCommand(t *testing.T) {
	f := newFixture(t)
	src := f.exactCase(t, "a.py", "x\n", "x\n")

	_, err := executeRoot(t, "-e", f.compiler, "--history", src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.dir, "state", "history.db"))

	out, err := executeRoot(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Recent Runs ===")
	assert.Contains(t, out, "1/1 passed")

	out, err = executeRoot(t, "history", "--flaky")
	require.NoError(t, err)
	assert.Contains(t, out, "No flaky cases found.")
}

func TestHistoryCommandWithoutDatabase(t *testing.T) {
	newFixture(t)
	out, err := executeRoot(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet.")
}

func TestSplitFlags(t *testing.T) {
	assert.Equal(t, []string{"-O2", "-g", "--x"}, splitFlags([]string{"-O2 -g", "  --x "}))
	assert.Nil(t, splitFlags(nil))
}

func TestRunningHeader(t *testing.T) {
	assert.Equal(t, "Running 0 tests", runningHeader(0))
	assert.Equal(t, "Running 1 test", runningHeader(1))
	assert.Equal(t, "Running 3 tests", runningHeader(3))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(executor.ErrTestsFailed))
	assert.Equal(t, 2, ExitCode(executor.NewConfigError("bad", nil)))
}
