package preview

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/skovand/redline/internal/batch"
	"github.com/skovand/redline/internal/edit"
)

type mapReader map[string]string

func (m mapReader) Read(_ context.Context, path string) (string, error) {
	content, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, batch.ErrNotFound)
	}
	return content, nil
}

func TestUnifiedDiffReplaceLine(t *testing.T) {
	got := UnifiedDiff("f.txt", "line1\nline2\nline3\n", "line1\nLINE2\nline3\n")
	want := `--- a/f.txt
+++ b/f.txt
@@ -1,3 +1,3 @@
 line1
-line2
+LINE2
 line3
`
	if got != want {
		t.Errorf("UnifiedDiff() = %q, want %q", got, want)
	}
}

func TestUnifiedDiffIdenticalContent(t *testing.T) {
	if got := UnifiedDiff("f.txt", "same\n", "same\n"); got != "" {
		t.Errorf("UnifiedDiff() = %q, want empty for identical content", got)
	}
}

func TestUnifiedDiffIsPositional(t *testing.T) {
	// Swapping two lines must show both positions as changed; a
	// minimal-edit-distance diff would show a single move.
	got := UnifiedDiff("f.txt", "a\nb\n", "b\na\n")
	for _, line := range []string{"-a", "-b", "+a", "+b"} {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("UnifiedDiff() = %q, missing %q", got, line)
		}
	}
}

func TestUnifiedDiffGrowingFile(t *testing.T) {
	got := UnifiedDiff("f.txt", "a\n", "a\nb\nc\n")
	want := `--- a/f.txt
+++ b/f.txt
@@ -1,1 +1,3 @@
 a
+b
+c
`
	if got != want {
		t.Errorf("UnifiedDiff() = %q, want %q", got, want)
	}
}

func TestUnifiedDiffShrinkToEmpty(t *testing.T) {
	got := UnifiedDiff("f.txt", "a\nb\n", "")
	want := `--- a/f.txt
+++ b/f.txt
@@ -1,2 +0,0 @@
-a
-b
`
	if got != want {
		t.Errorf("UnifiedDiff() = %q, want %q", got, want)
	}
}

func TestPreviewCreateFileAllAdditions(t *testing.T) {
	p := NewPreviewer(mapReader{})
	content := "package main\n\nfunc main() {}\n"
	pv, err := p.Preview(context.Background(), edit.CreateFile{Path: "main.go", Content: content})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	var rebuilt strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(pv.Diff, "\n"), "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "@@") {
			continue
		}
		if !strings.HasPrefix(line, "+") {
			t.Fatalf("diff line %q is not an addition", line)
		}
		rebuilt.WriteString(strings.TrimPrefix(line, "+") + "\n")
	}
	if rebuilt.String() != content {
		t.Errorf("additions rebuild %q, want %q", rebuilt.String(), content)
	}
	if pv.Warning != "" {
		t.Errorf("Warning = %q, want none for a fresh path", pv.Warning)
	}
}

func TestPreviewCreateFileOverExisting(t *testing.T) {
	p := NewPreviewer(mapReader{"a.txt": "old\n"})
	pv, err := p.Preview(context.Background(), edit.CreateFile{Path: "a.txt", Content: "new\n"})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(pv.Warning, "overwrites") {
		t.Errorf("Warning = %q, want overwrite warning", pv.Warning)
	}
	if !strings.Contains(pv.Diff, "-old") || !strings.Contains(pv.Diff, "+new") {
		t.Errorf("Diff = %q, want old content removed and new added", pv.Diff)
	}
}

func TestPreviewPartialEditComputesDiff(t *testing.T) {
	p := NewPreviewer(mapReader{"f.txt": "line1\nline2\nline3\n"})
	pv, err := p.Preview(context.Background(), edit.EditFilePartial{
		Path: "f.txt",
		Edits: []edit.LineEdit{
			{Operation: edit.OpReplace, StartLine: 2, EndLine: 2, Content: "LINE2"},
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(pv.Diff, "-line2\n+LINE2\n") {
		t.Errorf("Diff = %q, want the replaced line", pv.Diff)
	}
	if !strings.Contains(pv.Summary, "replace lines 2-2") {
		t.Errorf("Summary = %q", pv.Summary)
	}
}

func TestPreviewContextualEditFallsBackToSummary(t *testing.T) {
	p := NewPreviewer(mapReader{"f.txt": "foo()\n"})
	pv, err := p.Preview(context.Background(), edit.EditFileContextual{
		Path: "f.txt",
		Edit: edit.ContextEdit{Operation: edit.OpDelete, Target: "missing()"},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if pv.Diff != "" {
		t.Errorf("Diff = %q, want empty when the dry run fails", pv.Diff)
	}
	if !strings.Contains(pv.Warning, "not found") {
		t.Errorf("Warning = %q, want resolution failure", pv.Warning)
	}
	if !strings.Contains(pv.Summary, `delete "missing()"`) {
		t.Errorf("Summary = %q", pv.Summary)
	}
}

func TestPreviewMissingFileWarns(t *testing.T) {
	p := NewPreviewer(mapReader{})
	pv, err := p.Preview(context.Background(), edit.EditFileContextualBatch{
		Path: "ghost.txt",
		Edits: []edit.ContextEdit{
			{Operation: edit.OpDelete, Target: "x"},
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(pv.Warning, "does not exist") {
		t.Errorf("Warning = %q", pv.Warning)
	}
}

func TestPreviewShellCommandNeverExecutes(t *testing.T) {
	p := NewPreviewer(mapReader{})
	pv, err := p.Preview(context.Background(), edit.ExecuteShellCommand{Command: "rm -rf build"})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if pv.Summary != "run: rm -rf build" {
		t.Errorf("Summary = %q", pv.Summary)
	}
	if pv.Diff != "" {
		t.Errorf("Diff = %q, want none for shell commands", pv.Diff)
	}
}

func TestPreviewGeneralMessage(t *testing.T) {
	p := NewPreviewer(mapReader{})
	pv, err := p.Preview(context.Background(), edit.GeneralMessage{Message: "all done"})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if pv.Summary != "all done" {
		t.Errorf("Summary = %q", pv.Summary)
	}
}

func TestPreviewAllKeepsOrder(t *testing.T) {
	p := NewPreviewer(mapReader{"a.txt": "x\n"})
	previews, err := p.PreviewAll(context.Background(), []edit.Action{
		edit.CreateFolder{Path: "pkg"},
		edit.EditFileComplete{Path: "a.txt", Content: "y\n"},
	})
	if err != nil {
		t.Fatalf("PreviewAll() error = %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("len(previews) = %d, want 2", len(previews))
	}
	if previews[0].Kind != edit.KindCreateFolder || previews[1].Kind != edit.KindEditFileComplete {
		t.Errorf("previews out of order: %q, %q", previews[0].Kind, previews[1].Kind)
	}
}

func TestDescribeContextEditTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("y", 300)
	desc := describeContextEdit(edit.ContextEdit{
		Operation:   edit.OpReplace,
		Target:      strings.Repeat("x", 300),
		Replacement: long,
	})
	if len(desc) > 200 {
		t.Errorf("len(desc) = %d, want truncated preview", len(desc))
	}
	if !strings.Contains(desc, "...") {
		t.Errorf("desc = %q, want truncation marker", desc)
	}
}
