// Package apply turns validated edit descriptors into new file content.
// Application is atomic per file: any failure returns the original content
// untouched. All functions are pure; file I/O belongs to the caller.
package apply

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skovand/redline/internal/edit"
)

// LineOutOfBoundsError reports a line-addressed edit whose range does not
// fit the file. MaxLine is the file's actual line count.
type LineOutOfBoundsError struct {
	StartLine int
	EndLine   int
	MaxLine   int
}

func (e *LineOutOfBoundsError) Error() string {
	if e.StartLine == e.EndLine {
		return fmt.Sprintf("line %d is out of bounds, file has %d lines", e.StartLine, e.MaxLine)
	}
	return fmt.Sprintf("lines %d-%d are out of bounds, file has %d lines", e.StartLine, e.EndLine, e.MaxLine)
}

// ApplyLineEdits applies a batch of line-addressed edits. Every edit
// addresses the original line numbering; the batch is applied bottom-up so
// earlier applications cannot shift the line numbers later ones target.
// Validation and bounds checks run for the whole batch before any line is
// touched.
func ApplyLineEdits(content string, edits []edit.LineEdit) (string, error) {
	if err := edit.ValidateAll(edits); err != nil {
		return content, err
	}
	lines, trailingNL := splitLines(content)
	for i, e := range edits {
		if err := checkBounds(e, len(lines)); err != nil {
			return content, fmt.Errorf("edit %d: %w", i+1, err)
		}
	}

	sorted := make([]edit.LineEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lineKey(sorted[i]) > lineKey(sorted[j])
	})

	for _, e := range sorted {
		switch e.Operation {
		case edit.OpReplace:
			lines = splice(lines, e.StartLine-1, e.EndLine, contentLines(e.Content))
		case edit.OpDelete:
			lines = splice(lines, e.StartLine-1, e.EndLine, nil)
		case edit.OpInsert:
			lines = splice(lines, e.Line, e.Line, contentLines(e.Content))
		}
	}
	return joinLines(lines, trailingNL), nil
}

func checkBounds(e edit.LineEdit, maxLine int) error {
	switch e.Operation {
	case edit.OpReplace, edit.OpDelete:
		if e.StartLine > maxLine || e.EndLine > maxLine {
			return &LineOutOfBoundsError{StartLine: e.StartLine, EndLine: e.EndLine, MaxLine: maxLine}
		}
	case edit.OpInsert:
		if e.Line > maxLine {
			return &LineOutOfBoundsError{StartLine: e.Line, EndLine: e.Line, MaxLine: maxLine}
		}
	}
	return nil
}

// lineKey is the sort key for bottom-up application.
func lineKey(e edit.LineEdit) int {
	if e.Operation == edit.OpInsert {
		return e.Line
	}
	return e.StartLine
}

// splitLines breaks content into lines without terminators, reporting
// whether the content ended in a newline so joinLines can restore it.
// Empty content reports a trailing newline so lines inserted into an empty
// file come out terminated.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, true
	}
	trailingNL := strings.HasSuffix(content, "\n")
	if trailingNL {
		content = content[:len(content)-1]
	}
	return strings.Split(content, "\n"), trailingNL
}

func joinLines(lines []string, trailingNL bool) string {
	if len(lines) == 0 {
		return ""
	}
	joined := strings.Join(lines, "\n")
	if trailingNL {
		joined += "\n"
	}
	return joined
}

// contentLines splits descriptor content into lines for splicing. A
// trailing newline is a terminator, not an extra empty line, and empty
// content contributes no lines at all.
func contentLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func splice(lines []string, start, end int, repl []string) []string {
	out := make([]string, 0, len(lines)-(end-start)+len(repl))
	out = append(out, lines[:start]...)
	out = append(out, repl...)
	out = append(out, lines[end:]...)
	return out
}
