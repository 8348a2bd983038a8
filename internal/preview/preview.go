package preview

import (
	"context"
	"errors"
	"fmt"

	"github.com/skovand/redline/internal/apply"
	"github.com/skovand/redline/internal/batch"
	"github.com/skovand/redline/internal/edit"
)

// FileReader supplies current file content for diffing. Reads for missing
// files must wrap batch.ErrNotFound.
type FileReader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Preview is the rendered form of one action. Summary is always set; Diff
// is set when a diff could be computed; Warning explains why it could not
// be, or flags something the user should know before applying.
type Preview struct {
	Kind    string `json:"kind"`
	Target  string `json:"target,omitempty"`
	Summary string `json:"summary"`
	Diff    string `json:"diff,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Previewer renders actions against current file content without mutating
// anything. Edits are dry-run through the real applier so the diff shows
// exactly what Apply would produce.
type Previewer struct {
	files FileReader
}

func NewPreviewer(files FileReader) *Previewer {
	return &Previewer{files: files}
}

// PreviewAll renders a batch in input order.
func (p *Previewer) PreviewAll(ctx context.Context, actions []edit.Action) ([]Preview, error) {
	previews := make([]Preview, 0, len(actions))
	for i, action := range actions {
		pv, err := p.Preview(ctx, action)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		previews = append(previews, pv)
	}
	return previews, nil
}

// Preview renders one action. Edit problems (unresolvable anchors, lines
// out of range) surface in the Warning field so the whole batch still
// renders; the returned error reports infrastructure failures only.
func (p *Previewer) Preview(ctx context.Context, action edit.Action) (Preview, error) {
	pv := Preview{Kind: action.Kind(), Target: edit.Target(action)}
	switch a := action.(type) {
	case edit.CreateFile:
		before, found, err := p.read(ctx, a.Path)
		if err != nil {
			return Preview{}, err
		}
		pv.Summary = fmt.Sprintf("create %s (%d lines)", a.Path, countLines(a.Content))
		if found {
			pv.Warning = "overwrites an existing file"
		}
		pv.Diff = UnifiedDiff(a.Path, before, a.Content)
	case edit.CreateFolder:
		pv.Summary = "create folder " + a.Path
	case edit.EditFileComplete:
		before, found, err := p.read(ctx, a.Path)
		if err != nil {
			return Preview{}, err
		}
		pv.Summary = fmt.Sprintf("rewrite %s (%d -> %d lines)", a.Path, countLines(before), countLines(a.Content))
		if !found {
			pv.Warning = "file does not exist, rewrite will create it"
		}
		pv.Diff = UnifiedDiff(a.Path, before, a.Content)
	case edit.EditFilePartial:
		pv.Summary = describeLineEdits(a.Edits)
		before, found, err := p.read(ctx, a.Path)
		if err != nil {
			return Preview{}, err
		}
		if !found {
			pv.Warning = "file does not exist, cannot compute diff"
			break
		}
		after, applyErr := apply.ApplyLineEdits(before, a.Edits)
		if applyErr != nil {
			pv.Warning = applyErr.Error()
			break
		}
		pv.Diff = UnifiedDiff(a.Path, before, after)
	case edit.EditFileContextual:
		pv.Summary = describeContextEdit(a.Edit)
		before, found, err := p.read(ctx, a.Path)
		if err != nil {
			return Preview{}, err
		}
		if !found {
			pv.Warning = "file does not exist, cannot compute diff"
			break
		}
		after, applyErr := apply.ApplyContextEdit(before, a.Edit)
		if applyErr != nil {
			pv.Warning = applyErr.Error()
			break
		}
		pv.Diff = UnifiedDiff(a.Path, before, after)
	case edit.EditFileContextualBatch:
		pv.Summary = describeContextEdits(a.Edits)
		before, found, err := p.read(ctx, a.Path)
		if err != nil {
			return Preview{}, err
		}
		if !found {
			pv.Warning = "file does not exist, cannot compute diff"
			break
		}
		after, applyErr := apply.ApplyContextEdits(before, a.Edits)
		if applyErr != nil {
			pv.Warning = applyErr.Error()
			break
		}
		pv.Diff = UnifiedDiff(a.Path, before, after)
	case edit.ExecuteShellCommand:
		pv.Summary = "run: " + a.Command
	case edit.GeneralMessage:
		pv.Summary = a.Message
	}
	return pv, nil
}

// read fetches current content, mapping not-found to ("", false, nil) so
// callers can diff against empty content or warn.
func (p *Previewer) read(ctx context.Context, path string) (string, bool, error) {
	content, err := p.files.Read(ctx, path)
	if errors.Is(err, batch.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, true, nil
}
