package apply

import (
	"fmt"
	"strings"

	"github.com/skovand/redline/internal/anchor"
	"github.com/skovand/redline/internal/edit"
)

// ApplyContextEdit applies one content-anchored edit. The anchor is
// resolved against content exactly as given; on any failure the original
// content is returned with the error.
func ApplyContextEdit(content string, e edit.ContextEdit) (string, error) {
	if err := e.Validate(); err != nil {
		return content, err
	}
	opts := anchor.Options{Before: e.Before, After: e.After}
	switch e.Operation {
	case edit.OpReplace:
		m, err := anchor.Resolve(content, e.Target, opts)
		if err != nil {
			return content, err
		}
		return content[:m.Start] + e.Replacement + content[m.End:], nil
	case edit.OpDelete:
		m, err := anchor.Resolve(content, e.Target, opts)
		if err != nil {
			return content, err
		}
		start, end := m.Start, m.End
		// A whole-line delete takes its terminator with it so no blank
		// line is left behind.
		atLineStart := start == 0 || content[start-1] == '\n'
		if atLineStart && end < len(content) && content[end] == '\n' {
			end++
		}
		return content[:start] + content[end:], nil
	case edit.OpInsert:
		m, err := anchor.Resolve(content, e.Anchor, opts)
		if err != nil {
			return content, err
		}
		return insertAtLine(content, m, e.Pos(), e.Content), nil
	}
	return content, nil
}

// ApplyContextEdits applies a batch in order, each edit resolving against
// the content produced by its predecessors. A failure at any edit discards
// the whole batch and returns the original content.
func ApplyContextEdits(content string, edits []edit.ContextEdit) (string, error) {
	current := content
	for i, e := range edits {
		next, err := ApplyContextEdit(current, e)
		if err != nil {
			return content, fmt.Errorf("edit %d: %w", i+1, err)
		}
		current = next
	}
	return current, nil
}

// insertAtLine places text on its own line next to the anchor: before the
// line the anchor starts on, or after the line it ends on. Inserting
// mid-line would mangle both the anchor line and the inserted text.
func insertAtLine(content string, m anchor.Match, pos edit.Position, text string) string {
	if pos == edit.PositionBefore {
		at := lineStart(content, m.Start)
		return content[:at] + terminated(text) + content[at:]
	}
	at := lineEnd(content, m.End)
	if at == len(content) && !strings.HasSuffix(content, "\n") {
		// The anchor sits on an unterminated final line; the line gains a
		// terminator so the insertion starts on a line of its own.
		return content + "\n" + text
	}
	return content[:at] + terminated(text) + content[at:]
}

// lineStart returns the offset of the first byte of the line containing
// offset i.
func lineStart(content string, i int) int {
	return strings.LastIndexByte(content[:i], '\n') + 1
}

// lineEnd returns the offset just past the newline that terminates the
// line containing offset i-1, or len(content) when that line is
// unterminated.
func lineEnd(content string, i int) int {
	j := strings.IndexByte(content[i:], '\n')
	if j < 0 {
		return len(content)
	}
	return i + j + 1
}

// terminated guarantees inserted text ends with a newline so the content
// that used to start at the insertion point stays on its own line.
func terminated(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
