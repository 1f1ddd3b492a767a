package models

// Binding selects how a directive attaches to the output cursor.
type Binding int

const (
	// Floating directives (CHECK:) match the nearest line at or after the cursor.
	Floating Binding = iota
	// Anchored directives (CHECK-NEXT:) must match the line at the cursor.
	Anchored
)

// Directive prefixes recognised in .err expectation files.
const (
	PrefixFloating = "CHECK:"
	PrefixAnchored = "CHECK-NEXT:"
)

// String returns the string representation of Binding.
func (b Binding) String() string {
	switch b {
	case Anchored:
		return "anchored"
	default:
		return "floating"
	}
}

// Prefix returns the directive prefix that produces this binding.
func (b Binding) Prefix() string {
	if b == Anchored {
		return PrefixAnchored
	}
	return PrefixFloating
}

// Directive is a single typed pattern parsed from an expectation file.
// Directives are immutable once parsed.
type Directive struct {
	Binding Binding // Anchored or Floating
	Pattern string  // Trimmed text the output line must equal
	Line    int     // 1-based line in the expectation file
}

// String renders the directive the way it is written in a .err file.
func (d Directive) String() string {
	return d.Binding.Prefix() + " " + d.Pattern
}

// Mode identifies which matcher verifies a test case.
type Mode int

const (
	// ModeNone means no expectation artifact exists for the source.
	ModeNone Mode = iota
	// ModeExact compares stdout line by line against a .ast file.
	ModeExact
	// ModeDirective matches stderr against CHECK directives from a .err file.
	ModeDirective
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeDirective:
		return "directive"
	default:
		return "none"
	}
}

// ExpectationSet is the parsed expectation for one test case.
// Exactly one of Lines (exact mode) or Directives (directive mode) is used.
type ExpectationSet struct {
	Mode       Mode
	Path       string
	Raw        string
	Lines      []string
	Directives []Directive
}
