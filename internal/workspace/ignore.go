// Package workspace implements the file, shell, and tree services over a
// workspace root directory.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var defaultIgnorePatterns = []string{
	// Always ignore the .git folder
	".git/**",
	// Always ignore the history database
	".redline.db",
	".redline.db-*",
	// Always ignore the ignore file itself
	".redlineignore",
}

// commonIgnoreDirs are directory names never worth descending into when
// building the tree, regardless of ignore files.
var commonIgnoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
}

// LoadIgnoreFiles compiles the ignore matcher for startDir: built-in
// patterns plus every .redlineignore found walking up the directory
// hierarchy.
func LoadIgnoreFiles(startDir string) (*gitignore.GitIgnore, error) {
	ignoreFiles := findIgnoreFiles(startDir)

	var allPatterns []string
	allPatterns = append(allPatterns, defaultIgnorePatterns...)

	for _, ignoreFile := range ignoreFiles {
		content, err := os.ReadFile(ignoreFile)
		if err != nil {
			return nil, err
		}
		lines := strings.Split(string(content), "\n")
		allPatterns = append(allPatterns, lines...)
	}

	return gitignore.CompileIgnoreLines(allPatterns...), nil
}

// findIgnoreFiles finds all .redlineignore files in the directory hierarchy
func findIgnoreFiles(startDir string) []string {
	var ignoreFiles []string
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil
	}
	for {
		ignoreFile := filepath.Join(dir, ".redlineignore")
		if _, err := os.Stat(ignoreFile); err == nil {
			ignoreFiles = append(ignoreFiles, ignoreFile)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ignoreFiles
}
