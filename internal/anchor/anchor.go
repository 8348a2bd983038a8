// Package anchor resolves content-anchored edit sites: given file content
// and the exact text an edit targets, it finds the unique byte range the
// edit applies to, using optional before/after context to disambiguate
// repeated occurrences.
package anchor

import (
	"fmt"
	"strings"
)

// Match is the resolved byte range of an anchor within the original
// content. End is exclusive.
type Match struct {
	Start int
	End   int
}

// Options carries disambiguation context. A non-empty Before must appear
// immediately before a candidate occurrence, and a non-empty After
// immediately after it, for the candidate to survive. The strings must
// include any whitespace between them and the anchor; nothing is bridged.
type Options struct {
	Before string
	After  string
}

// NotFoundError reports that no occurrence of the anchor text survived
// resolution, either because the text is absent or because the supplied
// context ruled every occurrence out.
type NotFoundError struct {
	Needle string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("anchor %q not found", snippet(e.Needle))
}

// AmbiguousError reports that more than one occurrence survived
// resolution. Candidates holds the byte offsets of the surviving
// occurrences so callers can show the user where they are.
type AmbiguousError struct {
	Needle     string
	Candidates []int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("anchor %q matches %d times, expected exactly one match", snippet(e.Needle), len(e.Candidates))
}

// Resolve locates needle within content. A unique occurrence resolves
// immediately; repeated occurrences are filtered by opts. The returned
// range always addresses the needle itself, never the context around it.
func Resolve(content, needle string, opts Options) (Match, error) {
	if needle == "" {
		return Match{}, &NotFoundError{Needle: needle}
	}
	offsets := indexAll(content, needle)
	switch len(offsets) {
	case 0:
		return Match{}, &NotFoundError{Needle: needle}
	case 1:
		return Match{Start: offsets[0], End: offsets[0] + len(needle)}, nil
	}

	survivors := offsets[:0:0]
	for _, off := range offsets {
		if opts.Before != "" {
			if off < len(opts.Before) || content[off-len(opts.Before):off] != opts.Before {
				continue
			}
		}
		if opts.After != "" {
			end := off + len(needle)
			if end+len(opts.After) > len(content) || content[end:end+len(opts.After)] != opts.After {
				continue
			}
		}
		survivors = append(survivors, off)
	}
	switch len(survivors) {
	case 0:
		return Match{}, &NotFoundError{Needle: needle}
	case 1:
		return Match{Start: survivors[0], End: survivors[0] + len(needle)}, nil
	default:
		return Match{}, &AmbiguousError{Needle: needle, Candidates: survivors}
	}
}

// indexAll returns the offsets of every non-overlapping occurrence of
// needle, scanning left to right.
func indexAll(content, needle string) []int {
	var offsets []int
	for start := 0; ; {
		i := strings.Index(content[start:], needle)
		if i < 0 {
			return offsets
		}
		offsets = append(offsets, start+i)
		start += i + len(needle)
	}
}

const snippetLimit = 64

// snippet shortens anchor text for error messages so a multi-line anchor
// does not flood the output.
func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit] + "..."
}
