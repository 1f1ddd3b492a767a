package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator lists the steps of a multi-item operation as
// "[N/Total] item", ending with a one-line total.
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	noun    string
	step    *color.Color
	done    *color.Color
}

// NewProgressIndicator creates a new progress indicator. noun names the
// items in the final line ("expectation files").
func NewProgressIndicator(w io.Writer, total int, noun string, colorOutput bool) *ProgressIndicator {
	p := &ProgressIndicator{
		writer: w,
		total:  total,
		noun:   noun,
		step:   color.New(color.FgCyan),
		done:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.step, p.done} {
		if colorOutput {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Step displays progress for the current item with an optional detail.
func (p *ProgressIndicator) Step(item, detail string) {
	p.current++
	line := fmt.Sprintf("  [%d/%d] %s", p.current, p.total, item)
	if detail != "" {
		line += ": " + detail
	}
	fmt.Fprintln(p.writer, p.step.Sprint(line))
}

// Complete displays the final count.
func (p *ProgressIndicator) Complete() {
	fmt.Fprintf(p.writer, "%s Checked %d %s\n", p.done.Sprint("OK"), p.total, p.noun)
}
