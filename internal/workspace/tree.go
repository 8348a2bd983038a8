package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Node is one entry of the workspace tree.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Children []*Node `json:"children,omitempty"`
}

const (
	NodeFile   = "file"
	NodeFolder = "folder"
)

// Tree builds the workspace structure rooted at root, skipping ignored
// entries. Children are sorted folders before files, each group by name.
func Tree(root string) (*Node, error) {
	ignorer, err := LoadIgnoreFiles(root)
	if err != nil {
		return nil, fmt.Errorf("loading ignore files: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	node, err := buildTree(root, ".", ignorer)
	if err != nil {
		return nil, err
	}
	node.Name = filepath.Base(abs)
	return node, nil
}

func buildTree(root, rel string, ignorer *gitignore.GitIgnore) (*Node, error) {
	node := &Node{Name: filepath.Base(rel), Path: rel, Type: NodeFolder}
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	for _, entry := range entries {
		childRel := entry.Name()
		if rel != "." {
			childRel = filepath.Join(rel, entry.Name())
		}
		if entry.IsDir() {
			if commonIgnoreDirs[entry.Name()] || ignorer.MatchesPath(childRel+"/") {
				continue
			}
			child, err := buildTree(root, childRel, ignorer)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		if ignorer.MatchesPath(childRel) {
			continue
		}
		node.Children = append(node.Children, &Node{
			Name: entry.Name(),
			Path: childRel,
			Type: NodeFile,
		})
	}
	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Type != b.Type {
			return a.Type == NodeFolder
		}
		return a.Name < b.Name
	})
	return node, nil
}
