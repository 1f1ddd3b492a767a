// Package artifacts persists the inputs and outputs of failing test cases
// for offline inspection.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/chocotest/internal/filelock"
	"github.com/harrison/chocotest/internal/models"
)

// LockFileName is the lock taken inside the dump directory while writing.
const LockFileName = ".chocotest.lock"

// Writer dumps failing cases into a directory. For a source "foo.py" it
// writes foo.py (a copy of the source), foo.py.expected and foo.py.actual.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir. The directory is created lazily.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the dump directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteFailure writes the artifacts for v. Passing verdicts are ignored.
func (w *Writer) WriteFailure(v models.Verdict) error {
	if v.Passed() {
		return nil
	}
	return w.Write(v)
}

// Write writes the artifacts for v regardless of its outcome.
func (w *Writer) Write(v models.Verdict) error {
	name := filepath.Base(v.Case.Source)

	return filelock.WithLock(filepath.Join(w.dir, LockFileName), func() error {
		source, err := os.ReadFile(v.Case.Source)
		if err != nil {
			return fmt.Errorf("failed to read source %s: %w", v.Case.Source, err)
		}

		files := []struct {
			path string
			data []byte
		}{
			{filepath.Join(w.dir, name), source},
			{filepath.Join(w.dir, name+".expected"), []byte(v.ExpectedText)},
			{filepath.Join(w.dir, name+".actual"), []byte(v.ActualText)},
		}
		for _, f := range files {
			if err := filelock.AtomicWrite(f.path, f.data); err != nil {
				return err
			}
		}
		return nil
	})
}
