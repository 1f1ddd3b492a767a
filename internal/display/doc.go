// Package display renders user-facing warnings and step listings for the
// chocotest subcommands.
//
//	warning := display.Warning{
//	    Title:      "Ambiguous expectations",
//	    Message:    "Both .ast and .err exist for the same source",
//	    Files:      []string{"Test/Sema/bad.py"},
//	    Suggestion: "Delete one of the expectation files",
//	}
//	warning.Display(os.Stderr, report.ColorEnabled(os.Stderr))
//
// Colour comes from fatih/color and is only emitted when the caller says
// the writer is a terminal.
package display
