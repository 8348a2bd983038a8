package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/skovand/redline/internal/workspace"
)

var treeJSON bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the workspace file tree",
	Long: `Tree prints the workspace structure with ignored files filtered out,
honoring built-in ignore patterns and .redlineignore files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, err := workspace.Tree(cfg.Workspace)
		if err != nil {
			return fmt.Errorf("failed to read workspace tree: %w", err)
		}

		if treeJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(root)
		}

		printTree(os.Stdout, root, "")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Print the tree as JSON")
}

// printTree prints a node and its children with indentation, folders first
// as ordered by workspace.Tree. Folders carry a trailing slash.
func printTree(w io.Writer, node *workspace.Node, prefix string) {
	name := node.Name
	if node.Type == workspace.NodeFolder {
		name += "/"
	}
	fmt.Fprintf(w, "%s%s\n", prefix, name)
	for _, child := range node.Children {
		printTree(w, child, prefix+"    ")
	}
}
