// Package preview renders what a proposed action would do without touching
// file state: unified-diff text for content changes and per-descriptor
// summaries for edit batches.
package preview

import (
	"fmt"
	"strings"
)

// UnifiedDiff renders a line diff of before vs after under a/ and b/
// headers with a single hunk. The comparison is positional: line i of
// before is compared to line i of after, so a moved line shows as a
// removal plus an addition. That trades diff minimality for predictable
// output; this is a change viewer, not a patch generator. Identical
// contents yield an empty string.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	a := diffLines(before)
	b := diffLines(after)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", hunkStart(len(a)), len(a), hunkStart(len(b)), len(b))

	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	for i := 0; i < max; {
		if i < len(a) && i < len(b) && a[i] == b[i] {
			sb.WriteString(" " + a[i] + "\n")
			i++
			continue
		}
		// A run of differing positions renders as its removals followed by
		// its additions.
		j := i
		for j < max && !(j < len(a) && j < len(b) && a[j] == b[j]) {
			j++
		}
		for k := i; k < j && k < len(a); k++ {
			sb.WriteString("-" + a[k] + "\n")
		}
		for k := i; k < j && k < len(b); k++ {
			sb.WriteString("+" + b[k] + "\n")
		}
		i = j
	}
	return sb.String()
}

func hunkStart(count int) int {
	if count == 0 {
		return 0
	}
	return 1
}

func diffLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
