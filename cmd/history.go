package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd represents the batch history management command. Bare
// "redline history" lists, same as "redline history list".
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage applied batch history",
	Long:  `Inspect and prune the record of applied action batches.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList(cmd)
	},
}

var listHistoryCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recorded batches, newest first",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList(cmd)
	},
}

func runHistoryList(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeDB, err := openHistory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled")
	}
	defer closeDB()

	batches, err := store.ListBatches(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}
	if len(batches) == 0 {
		fmt.Println("No batches recorded.")
		return nil
	}
	for _, b := range batches {
		fmt.Printf("%s  %s  %-2d actions  %s\n",
			b.ID, b.CreatedAt.Format(time.DateTime), b.ActionCount, b.Root)
	}
	return nil
}

var showHistoryCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one batch with its per-action results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closeDB, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("history is disabled")
		}
		defer closeDB()

		b, err := store.GetBatch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("batch %s\napplied %s in %s\n\n", b.ID, b.CreatedAt.Format(time.DateTime), b.Root)
		for i, res := range b.Results {
			printResult(i+1, len(b.Results), res)
		}
		return nil
	},
}

var rmHistoryCmd = &cobra.Command{
	Use:     "rm <id>",
	Short:   "Delete one batch from history",
	Aliases: []string{"delete", "remove"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closeDB, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("history is disabled")
		}
		defer closeDB()

		if err := store.DeleteBatch(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted batch %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(showHistoryCmd)
	historyCmd.AddCommand(rmHistoryCmd)

	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 50, "Maximum number of batches to list")
}
