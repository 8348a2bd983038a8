package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skovand/redline/internal/batch"
)

var (
	applyDryRun    bool
	applyNoHistory bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Apply an action batch to the workspace",
	Long: `Apply reads an action batch from a file or stdin and executes it against
the workspace in order: folders first, then file actions and shell commands.
Each applied batch is recorded in history unless disabled.`,
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

		if applyDryRun {
			return previewActions(cmd.Context(), cfg, actions)
		}

		logger := newLogger()
		files, shell := newWorkspace(cfg)
		coord := batch.NewCoordinator(files, shell, logger)
		results := coord.Apply(cmd.Context(), actions)

		failed := 0
		for i, res := range results {
			printResult(i+1, len(results), res)
			if res.Status == batch.StatusError {
				failed++
			}
		}

		// Record history on a fresh context: an interrupted batch still has
		// committed actions worth recording, and cmd.Context() is already
		// cancelled at that point.
		historyCtx := context.WithoutCancel(cmd.Context())
		store, closeDB, err := openHistory(historyCtx, cfg)
		if err != nil {
			logger.Warn("failed to open history store", slog.String("error", err.Error()))
		} else if store != nil {
			defer closeDB()
			id, err := store.SaveBatch(historyCtx, cfg.Workspace, results)
			if err != nil {
				logger.Warn("failed to record batch history", slog.String("error", err.Error()))
			} else {
				fmt.Printf("recorded batch %s\n", id)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d actions failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Preview the batch instead of applying it")
	applyCmd.Flags().BoolVar(&applyNoHistory, "no-history", false, "Do not record this batch in history")
}

func printResult(n, total int, res batch.Result) {
	header := fmt.Sprintf("[%d/%d] %-7s %s", n, total, res.Status, res.Kind)
	if res.Target != "" {
		header += " " + res.Target
	}
	fmt.Println(header)

	if res.Detail != "" {
		fmt.Printf("  %s\n", res.Detail)
	}
	if res.Output != nil {
		printCommandOutput(*res.Output)
	}
}

func printCommandOutput(out batch.CommandOutput) {
	if out.Stdout != "" {
		fmt.Print(indent(out.Stdout))
	}
	if out.Stderr != "" {
		fmt.Print(indent(out.Stderr))
	}
}

// indent prefixes every line with four spaces, keeping command output
// visually separate from result lines.
func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
