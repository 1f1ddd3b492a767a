package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarningDisplayPlain(t *testing.T) {
	var buf bytes.Buffer
	Warning{
		Title:      "Ambiguous expectations",
		Message:    "Both files exist",
		Files:      []string{"a.py", "b.py"},
		Suggestion: "Delete one",
	}.Display(&buf, false)

	want := "Warning: Ambiguous expectations\n" +
		"    Both files exist\n" +
		"    Affected files:\n" +
		"      1. a.py\n" +
		"      2. b.py\n" +
		"    Suggestion:\n" +
		"    Delete one\n"
	assert.Equal(t, want, buf.String())
}

func TestWarningDisplaySingleFile(t *testing.T) {
	var buf bytes.Buffer
	WarnFiles("Missing expectation", []string{"x.py"}).Display(&buf, false)
	assert.Equal(t, "Warning: Missing expectation\n    Affected file:\n      1. x.py\n", buf.String())
}

func TestWarningDisplayColor(t *testing.T) {
	var buf bytes.Buffer
	WarnFiles("t", nil).Display(&buf, true)
	assert.Contains(t, buf.String(), "\x1b[33m")
}

func TestProgressIndicator(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressIndicator(&buf, 2, "expectation files", false)
	p.Step("a.py", "exact, 12 lines")
	p.Step("b.py", "")
	p.Complete()

	want := "  [1/2] a.py: exact, 12 lines\n" +
		"  [2/2] b.py\n" +
		"OK Checked 2 expectation files\n"
	assert.Equal(t, want, buf.String())
}
