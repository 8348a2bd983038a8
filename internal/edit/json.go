package edit

import (
	"encoding/json"
	"fmt"
)

// WireAction is the JSON shape of one proposal entry. It exists only at the
// boundary; DecodeActions converts it into the typed Action set and nothing
// past the codec touches it.
type WireAction struct {
	Type    string       `json:"type" jsonschema:"required,enum=CREATE_FILE,enum=CREATE_FOLDER,enum=EDIT_FILE_COMPLETE,enum=EDIT_FILE_PARTIAL,enum=EDIT_FILE_CONTEXTUAL,enum=EDIT_FILE_CONTEXTUAL_BATCH,enum=EXECUTE_SHELL_COMMAND,enum=GENERAL_MESSAGE"`
	Path    string       `json:"path,omitempty" jsonschema:"description=Workspace-relative path the action operates on"`
	Content string       `json:"content,omitempty" jsonschema:"description=File content for CREATE_FILE and EDIT_FILE_COMPLETE"`
	Command string       `json:"command,omitempty" jsonschema:"description=Shell command for EXECUTE_SHELL_COMMAND"`
	Message string       `json:"message,omitempty" jsonschema:"description=Prose for GENERAL_MESSAGE"`
	Change  *WireChange  `json:"change,omitempty"`
	Changes []WireChange `json:"changes,omitempty"`
}

// WireChange is the JSON shape of a single edit descriptor. Line numbers
// are pointers so an absent field is distinguishable from zero.
type WireChange struct {
	Operation          string `json:"operation" jsonschema:"required,enum=replace,enum=insert,enum=insert_before,enum=insert_after,enum=delete"`
	StartLine          *int   `json:"start_line,omitempty" jsonschema:"description=First affected line (1-indexed)"`
	EndLine            *int   `json:"end_line,omitempty" jsonschema:"description=Last affected line (inclusive); defaults to start_line"`
	Line               *int   `json:"line,omitempty" jsonschema:"description=Insertion point; 0 inserts at the top of the file"`
	Content            string `json:"content,omitempty"`
	TargetContent      string `json:"target_content,omitempty" jsonschema:"description=Exact text expected at the edit site"`
	ReplacementContent string `json:"replacement_content,omitempty"`
	AnchorContent      string `json:"anchor_content,omitempty" jsonschema:"description=Exact text the insertion is anchored to"`
	BeforeContext      string `json:"before_context,omitempty" jsonschema:"description=Text that must immediately precede the anchor"`
	AfterContext       string `json:"after_context,omitempty" jsonschema:"description=Text that must immediately follow the anchor"`
	Position           string `json:"position,omitempty" jsonschema:"enum=before,enum=after"`
	Description        string `json:"description,omitempty"`
}

// parseOp maps the wire operation tag to an Op, unfolding the
// insert_before/insert_after aliases into insert plus a position.
func parseOp(s string) (Op, Position, error) {
	switch s {
	case "replace":
		return OpReplace, "", nil
	case "insert":
		return OpInsert, "", nil
	case "insert_before":
		return OpInsert, PositionBefore, nil
	case "insert_after":
		return OpInsert, PositionAfter, nil
	case "delete":
		return OpDelete, "", nil
	case "":
		return "", "", malformedf("missing operation")
	default:
		return "", "", malformedf("unknown operation %q", s)
	}
}

func (c WireChange) lineAddressed() bool {
	return c.StartLine != nil || c.EndLine != nil || c.Line != nil
}

func (c WireChange) contentAnchored() bool {
	return c.TargetContent != "" || c.AnchorContent != "" ||
		c.BeforeContext != "" || c.AfterContext != "" ||
		c.ReplacementContent != "" || c.Position != ""
}

// LineEdit converts a wire change into a line-addressed descriptor.
func (c WireChange) LineEdit() (LineEdit, error) {
	op, aliasPos, err := parseOp(c.Operation)
	if err != nil {
		return LineEdit{}, err
	}
	if aliasPos != "" {
		return LineEdit{}, malformedf("%s addresses content, not lines", c.Operation)
	}
	if c.contentAnchored() {
		return LineEdit{}, malformedf("change mixes line numbers with anchor fields")
	}
	e := LineEdit{Operation: op, Content: c.Content, Description: c.Description}
	switch op {
	case OpReplace, OpDelete:
		if c.StartLine == nil {
			return LineEdit{}, malformedf("%s requires start_line", op)
		}
		e.StartLine = *c.StartLine
		e.EndLine = e.StartLine
		if c.EndLine != nil {
			e.EndLine = *c.EndLine
		}
	case OpInsert:
		if c.Line == nil {
			return LineEdit{}, malformedf("insert requires line")
		}
		e.Line = *c.Line
	}
	if err := e.Validate(); err != nil {
		return LineEdit{}, err
	}
	return e, nil
}

// ContextEdit converts a wire change into a content-anchored descriptor.
func (c WireChange) ContextEdit() (ContextEdit, error) {
	op, aliasPos, err := parseOp(c.Operation)
	if err != nil {
		return ContextEdit{}, err
	}
	if c.lineAddressed() {
		return ContextEdit{}, malformedf("change mixes anchor fields with line numbers")
	}
	pos := aliasPos
	if c.Position != "" {
		p := Position(c.Position)
		if aliasPos != "" && aliasPos != p {
			return ContextEdit{}, malformedf("operation %s conflicts with position %q", c.Operation, c.Position)
		}
		pos = p
	}
	e := ContextEdit{
		Operation:   op,
		Target:      c.TargetContent,
		Replacement: c.ReplacementContent,
		Anchor:      c.AnchorContent,
		Content:     c.Content,
		Before:      c.BeforeContext,
		After:       c.AfterContext,
		Position:    pos,
		Description: c.Description,
	}
	if err := e.Validate(); err != nil {
		return ContextEdit{}, err
	}
	return e, nil
}

// Action converts a wire entry into its typed form, enforcing the
// per-kind required fields.
func (w WireAction) Action() (Action, error) {
	switch w.Type {
	case KindCreateFile:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		return CreateFile{Path: w.Path, Content: w.Content}, nil
	case KindCreateFolder:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		return CreateFolder{Path: w.Path}, nil
	case KindEditFileComplete:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		return EditFileComplete{Path: w.Path, Content: w.Content}, nil
	case KindEditFilePartial:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		if len(w.Changes) == 0 {
			return nil, malformedf("%s requires a non-empty changes array", w.Type)
		}
		edits := make([]LineEdit, len(w.Changes))
		for i, c := range w.Changes {
			e, err := c.LineEdit()
			if err != nil {
				return nil, fmt.Errorf("change %d: %w", i+1, err)
			}
			edits[i] = e
		}
		return EditFilePartial{Path: w.Path, Edits: edits}, nil
	case KindEditFileContextual:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		change := w.Change
		if change == nil {
			// Tolerate a single-element changes array; proposers mix the
			// two shapes up constantly.
			if len(w.Changes) == 1 {
				change = &w.Changes[0]
			} else if len(w.Changes) > 1 {
				return nil, malformedf("%s carries %d changes, use %s", w.Type, len(w.Changes), KindEditFileContextualBatch)
			} else {
				return nil, malformedf("%s requires change", w.Type)
			}
		}
		e, err := change.ContextEdit()
		if err != nil {
			return nil, err
		}
		return EditFileContextual{Path: w.Path, Edit: e}, nil
	case KindEditFileContextualBatch:
		if w.Path == "" {
			return nil, malformedf("%s requires path", w.Type)
		}
		if len(w.Changes) == 0 {
			return nil, malformedf("%s requires a non-empty changes array", w.Type)
		}
		edits := make([]ContextEdit, len(w.Changes))
		for i, c := range w.Changes {
			e, err := c.ContextEdit()
			if err != nil {
				return nil, fmt.Errorf("change %d: %w", i+1, err)
			}
			edits[i] = e
		}
		return EditFileContextualBatch{Path: w.Path, Edits: edits}, nil
	case KindExecuteShellCommand:
		if w.Command == "" {
			return nil, malformedf("%s requires command", w.Type)
		}
		return ExecuteShellCommand{Command: w.Command}, nil
	case KindGeneralMessage:
		if w.Message == "" {
			return nil, malformedf("%s requires message", w.Type)
		}
		return GeneralMessage{Message: w.Message}, nil
	case "":
		return nil, malformedf("missing action type")
	default:
		return nil, malformedf("unknown action type %q", w.Type)
	}
}

// DecodeActions parses a JSON proposal batch. Any malformed entry fails the
// whole decode; partial batches never reach the coordinator.
func DecodeActions(data []byte) ([]Action, error) {
	var wire []WireAction
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding actions: %w", err)
	}
	actions := make([]Action, 0, len(wire))
	for i, w := range wire {
		a, err := w.Action()
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
