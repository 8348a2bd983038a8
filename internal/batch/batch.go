// Package batch coordinates applying a proposal batch against workspace
// services: one result per action, failures isolated, folder creations
// first.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/skovand/redline/internal/apply"
	"github.com/skovand/redline/internal/edit"
)

// ErrNotFound marks a read of a file that does not exist. FileService
// implementations wrap it so callers can tell absence from I/O failure.
var ErrNotFound = errors.New("file not found")

// FileService is the file access the coordinator depends on. Paths are
// workspace-relative.
type FileService interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, content string) error
	CreateFolder(ctx context.Context, path string) error
}

// CommandService runs shell commands in the workspace.
type CommandService interface {
	Execute(ctx context.Context, command string) (CommandOutput, error)
}

// CommandOutput is the captured outcome of one shell command. A non-zero
// ExitCode is data, not an error.
type CommandOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Status classifies one action's outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result reports what happened to one action. Results are returned in the
// batch's input order regardless of execution order.
type Result struct {
	Kind   string         `json:"kind"`
	Target string         `json:"target,omitempty"`
	Status Status         `json:"status"`
	Detail string         `json:"detail,omitempty"`
	Output *CommandOutput `json:"output,omitempty"`
}

// Coordinator applies action batches. It holds no state between calls;
// all effects go through the injected services.
type Coordinator struct {
	files  FileService
	cmds   CommandService
	logger *slog.Logger
}

func NewCoordinator(files FileService, cmds CommandService, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{files: files, cmds: cmds, logger: logger}
}

// Apply processes a batch. Folder creations run before everything else so
// files can land in folders created by the same batch; all other actions
// keep their relative order, and every result is placed at its action's
// input position. A failing action is recorded as an error result and the
// batch continues. Cancellation is honored between actions: the remaining
// ones are reported skipped, already-applied ones stay applied.
func (c *Coordinator) Apply(ctx context.Context, actions []edit.Action) []Result {
	type indexed struct {
		idx    int
		action edit.Action
	}
	ordered := make([]indexed, len(actions))
	for i, a := range actions {
		ordered[i] = indexed{idx: i, action: a}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		_, iFolder := ordered[i].action.(edit.CreateFolder)
		_, jFolder := ordered[j].action.(edit.CreateFolder)
		return iFolder && !jFolder
	})

	results := make([]Result, len(actions))
	for _, item := range ordered {
		if ctx.Err() != nil {
			results[item.idx] = Result{
				Kind:   item.action.Kind(),
				Target: edit.Target(item.action),
				Status: StatusSkipped,
				Detail: "cancelled before execution",
			}
			continue
		}
		results[item.idx] = c.applyOne(ctx, item.action)
	}
	return results
}

func (c *Coordinator) applyOne(ctx context.Context, action edit.Action) Result {
	res := Result{Kind: action.Kind(), Target: edit.Target(action), Status: StatusSuccess}
	switch a := action.(type) {
	case edit.CreateFolder:
		if err := c.files.CreateFolder(ctx, a.Path); err != nil {
			return c.fail(res, fmt.Errorf("creating folder: %w", err))
		}
		res.Detail = "folder created"
	case edit.CreateFile:
		if err := c.files.Write(ctx, a.Path, a.Content); err != nil {
			return c.fail(res, fmt.Errorf("writing file: %w", err))
		}
		res.Detail = "file created"
	case edit.EditFileComplete:
		if err := c.files.Write(ctx, a.Path, a.Content); err != nil {
			return c.fail(res, fmt.Errorf("writing file: %w", err))
		}
		res.Detail = "file rewritten"
	case edit.EditFilePartial:
		if err := c.rewrite(ctx, a.Path, func(content string) (string, error) {
			return apply.ApplyLineEdits(content, a.Edits)
		}); err != nil {
			return c.fail(res, err)
		}
		res.Detail = fmt.Sprintf("%d line edits applied", len(a.Edits))
	case edit.EditFileContextual:
		if err := c.rewrite(ctx, a.Path, func(content string) (string, error) {
			return apply.ApplyContextEdit(content, a.Edit)
		}); err != nil {
			return c.fail(res, err)
		}
		res.Detail = "edit applied"
	case edit.EditFileContextualBatch:
		if err := c.rewrite(ctx, a.Path, func(content string) (string, error) {
			return apply.ApplyContextEdits(content, a.Edits)
		}); err != nil {
			return c.fail(res, err)
		}
		res.Detail = fmt.Sprintf("%d edits applied", len(a.Edits))
	case edit.ExecuteShellCommand:
		out, err := c.cmds.Execute(ctx, a.Command)
		if err != nil {
			return c.fail(res, fmt.Errorf("executing command: %w", err))
		}
		res.Output = &out
		if out.ExitCode != 0 {
			res.Status = StatusError
			res.Detail = fmt.Sprintf("command exited with code %d", out.ExitCode)
		} else {
			res.Detail = "command completed"
		}
	case edit.GeneralMessage:
		res.Status = StatusSkipped
		res.Detail = a.Message
	}
	return res
}

// rewrite reads, transforms, and writes back one file. The write is
// skipped when the transform fails, keeping the file untouched.
func (c *Coordinator) rewrite(ctx context.Context, path string, transform func(string) (string, error)) error {
	content, err := c.files.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	updated, err := transform(content)
	if err != nil {
		return err
	}
	if err := c.files.Write(ctx, path, updated); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (c *Coordinator) fail(res Result, err error) Result {
	c.logger.Error("action failed",
		slog.String("kind", res.Kind),
		slog.String("target", res.Target),
		slog.String("error", err.Error()))
	res.Status = StatusError
	res.Detail = err.Error()
	return res
}
