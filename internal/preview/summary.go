package preview

import (
	"fmt"
	"strings"

	"github.com/skovand/redline/internal/edit"
)

// Truncation limits for summary blocks, so a descriptor carrying a whole
// file body does not flood the output.
const (
	contentPreviewLimit = 50
	contextPreviewLimit = 30
)

func describeLineEdits(edits []edit.LineEdit) string {
	blocks := make([]string, len(edits))
	for i, e := range edits {
		blocks[i] = fmt.Sprintf("edit %d: %s", i+1, describeLineEdit(e))
	}
	return strings.Join(blocks, "\n")
}

func describeLineEdit(e edit.LineEdit) string {
	var b strings.Builder
	switch e.Operation {
	case edit.OpReplace:
		fmt.Fprintf(&b, "replace lines %d-%d with %s", e.StartLine, e.EndLine, preview(e.Content, contentPreviewLimit))
	case edit.OpInsert:
		if e.Line == 0 {
			fmt.Fprintf(&b, "insert %s at the top", preview(e.Content, contentPreviewLimit))
		} else {
			fmt.Fprintf(&b, "insert %s after line %d", preview(e.Content, contentPreviewLimit), e.Line)
		}
	case edit.OpDelete:
		fmt.Fprintf(&b, "delete lines %d-%d", e.StartLine, e.EndLine)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, " (%s)", e.Description)
	}
	return b.String()
}

func describeContextEdits(edits []edit.ContextEdit) string {
	blocks := make([]string, len(edits))
	for i, e := range edits {
		blocks[i] = fmt.Sprintf("edit %d: %s", i+1, describeContextEdit(e))
	}
	return strings.Join(blocks, "\n")
}

func describeContextEdit(e edit.ContextEdit) string {
	var b strings.Builder
	switch e.Operation {
	case edit.OpReplace:
		fmt.Fprintf(&b, "replace %s with %s", preview(e.Target, contentPreviewLimit), preview(e.Replacement, contentPreviewLimit))
	case edit.OpInsert:
		fmt.Fprintf(&b, "insert %s %s %s", preview(e.Content, contentPreviewLimit), e.Pos(), preview(e.Anchor, contentPreviewLimit))
	case edit.OpDelete:
		fmt.Fprintf(&b, "delete %s", preview(e.Target, contentPreviewLimit))
	}
	if e.Before != "" {
		fmt.Fprintf(&b, " [before context %s]", preview(e.Before, contextPreviewLimit))
	}
	if e.After != "" {
		fmt.Fprintf(&b, " [after context %s]", preview(e.After, contextPreviewLimit))
	}
	if e.Description != "" {
		fmt.Fprintf(&b, " (%s)", e.Description)
	}
	return b.String()
}

// preview quotes s for single-line display, shortening it to limit runes.
func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		s = string(runes[:limit]) + "..."
	}
	return fmt.Sprintf("%q", s)
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
