package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skovand/redline/internal/batch"
)

func TestFilesWriteReadRoundTrip(t *testing.T) {
	files := NewFiles(t.TempDir())
	ctx := context.Background()

	err := files.Write(ctx, "pkg/sub/a.txt", "hello\n")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := files.Read(ctx, "pkg/sub/a.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "hello\n" {
		t.Errorf("Read() = %q, want %q", got, "hello\n")
	}
}

func TestFilesReadMissing(t *testing.T) {
	files := NewFiles(t.TempDir())
	_, err := files.Read(context.Background(), "ghost.txt")
	if !errors.Is(err, batch.ErrNotFound) {
		t.Fatalf("Read() error = %v, want batch.ErrNotFound", err)
	}
}

func TestFilesReadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	files := NewFiles(dir)
	got, err := files.Read(context.Background(), "empty.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "" {
		t.Errorf("Read() = %q, want empty", got)
	}
}

func TestFilesReadRefusesBinary(t *testing.T) {
	dir := t.TempDir()
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	if err := os.WriteFile(filepath.Join(dir, "img.png"), png, 0o644); err != nil {
		t.Fatal(err)
	}
	files := NewFiles(dir)
	_, err := files.Read(context.Background(), "img.png")
	if err == nil || !strings.Contains(err.Error(), "not a text file") {
		t.Fatalf("Read() error = %v, want binary refusal", err)
	}
}

func TestFilesReadStructuredText(t *testing.T) {
	// JSON sniffs as application/json, which is text by parentage and must
	// pass the binary guard.
	dir := t.TempDir()
	content := "{\n  \"name\": \"redline\"\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	files := NewFiles(dir)
	got, err := files.Read(context.Background(), "package.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != content {
		t.Errorf("Read() = %q, want %q", got, content)
	}
}

func TestFilesRejectsEscapingPaths(t *testing.T) {
	files := NewFiles(t.TempDir())
	ctx := context.Background()

	tests := []string{
		"",
		"/etc/passwd",
		"../outside.txt",
		"a/../../outside.txt",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if _, err := files.Read(ctx, path); err == nil {
				t.Errorf("Read(%q) should be rejected", path)
			}
			if err := files.Write(ctx, path, "x"); err == nil {
				t.Errorf("Write(%q) should be rejected", path)
			}
		})
	}
}

func TestFilesCleanPathStaysInside(t *testing.T) {
	// Interior .. segments are fine as long as the result stays under the
	// root.
	files := NewFiles(t.TempDir())
	ctx := context.Background()
	if err := files.Write(ctx, "a/../b.txt", "x"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := files.Read(ctx, "b.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "x" {
		t.Errorf("Read() = %q, want %q", got, "x")
	}
}

func TestFilesCreateFolder(t *testing.T) {
	dir := t.TempDir()
	files := NewFiles(dir)
	if err := files.CreateFolder(context.Background(), "a/b/c"); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "a/b/c"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}
}
