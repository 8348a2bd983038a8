package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/skovand/redline/internal/batch"
)

// Files is the on-disk FileService for one workspace root. All paths are
// relative to the root; anything pointing outside it is rejected before
// touching the filesystem.
type Files struct {
	root string
}

func NewFiles(root string) *Files {
	return &Files{root: root}
}

// Root returns the workspace root the service operates on.
func (f *Files) Root() string {
	return f.root
}

func (f *Files) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute path %q not allowed, paths are workspace-relative", path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return filepath.Join(f.root, clean), nil
}

// Read returns a file's content. Missing files wrap batch.ErrNotFound;
// binary content is refused since edits address text.
func (f *Files) Read(_ context.Context, path string) (string, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%s: %w", path, batch.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(content) > 0 && !isText(content) {
		return "", fmt.Errorf("%s is not a text file (%s)", path, mimetype.Detect(content).String())
	}
	return string(content), nil
}

// isText walks the detected MIME type's parent chain so structured text
// (application/json, text/xml subtypes) passes the binary guard, not just
// text/* types.
func isText(content []byte) bool {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Write stores content at path, creating parent directories as needed.
func (f *Files) Write(_ context.Context, path, content string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CreateFolder ensures the directory exists, parents included.
func (f *Files) CreateFolder(_ context.Context, path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("creating folder %s: %w", path, err)
	}
	return nil
}
