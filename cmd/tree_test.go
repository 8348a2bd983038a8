package cmd

import (
	"bytes"
	"testing"

	"github.com/skovand/redline/internal/workspace"
)

func TestPrintTree(t *testing.T) {
	root := &workspace.Node{
		Name: "project",
		Path: ".",
		Type: workspace.NodeFolder,
		Children: []*workspace.Node{
			{
				Name: "src",
				Path: "src",
				Type: workspace.NodeFolder,
				Children: []*workspace.Node{
					{Name: "main.go", Path: "src/main.go", Type: workspace.NodeFile},
				},
			},
			{Name: "readme.md", Path: "readme.md", Type: workspace.NodeFile},
		},
	}

	var buf bytes.Buffer
	printTree(&buf, root, "")

	want := "project/\n" +
		"    src/\n" +
		"        main.go\n" +
		"    readme.md\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
