// Package edit defines the action and descriptor model for proposed file
// edits: the closed set of action kinds a proposal batch may contain, the
// two descriptor addressing schemes, structural validation, and the JSON
// wire codec.
package edit

import "fmt"

// Op identifies the mutation a descriptor performs.
type Op string

const (
	OpReplace Op = "replace"
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
)

// Position selects which side of a resolved anchor inserted content lands on.
type Position string

const (
	PositionAfter  Position = "after"
	PositionBefore Position = "before"
)

// MalformedDescriptorError reports a descriptor or action that fails
// structural validation. It is always raised before any file content is
// touched.
type MalformedDescriptorError struct {
	Reason string
}

func (e *MalformedDescriptorError) Error() string {
	return "malformed descriptor: " + e.Reason
}

func malformedf(format string, args ...any) *MalformedDescriptorError {
	return &MalformedDescriptorError{Reason: fmt.Sprintf(format, args...)}
}

// Descriptor is one proposed mutation to a single file. Exactly two
// implementations exist: LineEdit addresses its edit site by line numbers,
// ContextEdit by literal anchor content. The two are never converted into
// one another; positional and content-based resolution have fundamentally
// different semantics and a lossy conversion would reintroduce the
// ambiguity anchors exist to avoid.
type Descriptor interface {
	Op() Op
	Validate() error
	isDescriptor()
}

// LineEdit is a line-addressed descriptor. Line numbers are 1-indexed and
// ranges are inclusive on both ends. An empty file has line count 0.
type LineEdit struct {
	Operation Op
	// StartLine and EndLine bound the affected range for replace and delete.
	StartLine int
	EndLine   int
	// Line is the insertion point for insert: content is placed immediately
	// after this line, so 0 inserts at the top of the file.
	Line int
	// Content carries the replacement lines for replace and the inserted
	// lines for insert. A trailing newline is treated as a terminator, not
	// an extra empty line.
	Content     string
	Description string
}

func (e LineEdit) Op() Op        { return e.Operation }
func (e LineEdit) isDescriptor() {}

// Validate checks structural well-formedness. Range checks against the
// actual line count happen at apply time.
func (e LineEdit) Validate() error {
	switch e.Operation {
	case OpReplace, OpDelete:
		if e.StartLine < 1 {
			return malformedf("%s requires start_line >= 1, got %d", e.Operation, e.StartLine)
		}
		if e.EndLine < e.StartLine {
			return malformedf("end_line %d precedes start_line %d", e.EndLine, e.StartLine)
		}
	case OpInsert:
		if e.Line < 0 {
			return malformedf("insert requires line >= 0, got %d", e.Line)
		}
	case "":
		return malformedf("missing operation")
	default:
		return malformedf("unknown operation %q", e.Operation)
	}
	return nil
}

// ContextEdit is a content-anchored descriptor. The edit site is located by
// exact substring match of Target (replace, delete) or Anchor (insert),
// optionally disambiguated by Before and After context. Context strings
// must include any whitespace connecting them to the anchor; matching is
// exact and adjacent.
type ContextEdit struct {
	Operation Op
	// Target is the exact text expected at the edit site for replace and
	// delete.
	Target string
	// Replacement substitutes the target span for replace.
	Replacement string
	// Anchor locates the insertion point for insert.
	Anchor string
	// Content is the text inserted for insert.
	Content string
	// Before and After, when non-empty, must appear immediately around a
	// candidate occurrence for it to survive disambiguation.
	Before string
	After  string
	// Position places inserted content before or after the anchor's line.
	// Empty means after.
	Position    Position
	Description string
}

func (e ContextEdit) Op() Op        { return e.Operation }
func (e ContextEdit) isDescriptor() {}

// Pos returns the effective insert position, defaulting to after.
func (e ContextEdit) Pos() Position {
	if e.Position == "" {
		return PositionAfter
	}
	return e.Position
}

func (e ContextEdit) Validate() error {
	switch e.Operation {
	case OpReplace, OpDelete:
		if e.Target == "" {
			return malformedf("%s requires target_content", e.Operation)
		}
	case OpInsert:
		if e.Anchor == "" {
			return malformedf("insert requires anchor_content")
		}
		switch e.Position {
		case "", PositionAfter, PositionBefore:
		default:
			return malformedf("unknown insert position %q", e.Position)
		}
	case "":
		return malformedf("missing operation")
	default:
		return malformedf("unknown operation %q", e.Operation)
	}
	return nil
}

// ValidateAll validates a descriptor batch, reporting the first failure
// with its 1-indexed position.
func ValidateAll[D Descriptor](edits []D) error {
	for i, e := range edits {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}
	}
	return nil
}
