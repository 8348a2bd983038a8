package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skovand/redline/internal/config"
	"github.com/skovand/redline/internal/edit"
	"github.com/skovand/redline/internal/preview"
	"github.com/skovand/redline/internal/render"
)

var previewSummary bool

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Preview an action batch without applying it",
	Long: `Preview reads an action batch from a file or stdin and prints what each
action would do: unified diffs for file edits, summaries for everything else.
Nothing is written to the workspace.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		actions, err := readActionInput(args)
		if err != nil {
			return err
		}
		return previewActions(cmd.Context(), cfg, actions)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&previewSummary, "summary", false, "Print summaries only, skip diffs")
}

func previewActions(ctx context.Context, cfg config.Config, actions []edit.Action) error {
	files, _ := newWorkspace(cfg)
	previewer := preview.NewPreviewer(files)
	previews, err := previewer.PreviewAll(ctx, actions)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer()
	for i, pv := range previews {
		printPreview(i+1, len(previews), pv, renderer)
	}
	return nil
}

func printPreview(n, total int, pv preview.Preview, renderer render.Renderer) {
	if pv.Target != "" {
		fmt.Printf("[%d/%d] %s %s\n", n, total, pv.Kind, pv.Target)
	} else {
		fmt.Printf("[%d/%d] %s\n", n, total, pv.Kind)
	}

	if pv.Kind == edit.KindGeneralMessage {
		rendered, err := renderer.Render(pv.Summary)
		if err != nil {
			rendered = pv.Summary
		}
		fmt.Println(rendered)
		return
	}

	fmt.Printf("  %s\n", pv.Summary)
	if pv.Warning != "" {
		fmt.Printf("  warning: %s\n", pv.Warning)
	}
	if pv.Diff != "" && !previewSummary {
		fmt.Println()
		fmt.Print(render.ColorizeDiff(pv.Diff, noColor))
		fmt.Println()
	}
}
