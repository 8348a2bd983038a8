package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skovand/redline/internal/config"
	"github.com/skovand/redline/internal/history"
	"github.com/skovand/redline/internal/version"
	"github.com/skovand/redline/internal/workspace"
)

var (
	configPath    string
	workspacePath string
	noColor       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Preview and apply structured edit batches",
	Long: `Redline turns JSON edit batches produced by review tooling into previewed,
applied changes: line edits, anchored edits, file creation, and shell steps,
with per-batch history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Printf("redline version %s\n", version.Get())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Listen for cancellation
	// - in shells for user-initiated interruption SIGINT
	// - in system sent/container environments, SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "Workspace root (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.Flags().BoolP("version", "v", false, "Print the version number and exit")
}

// loadConfig resolves the configuration once and layers explicitly set CLI
// flags on top of the file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	applyFlagOverrides(cmd.Flags(), &cfg)
	return cfg, nil
}

// applyFlagOverrides copies CLI flag values onto the configuration. Only
// flags the user explicitly provided override the file, so an untouched
// flag never clobbers a configured value with its default.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "workspace":
			cfg.Workspace = workspacePath
		case "address":
			cfg.Server.Address = serveAddress
		case "no-history":
			cfg.History.Disabled = applyNoHistory
		}
	})
}

// newLogger builds the CLI logger. Diagnostics go to stderr so stdout stays
// clean for previews and results.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// openHistory opens the batch history store for the workspace. It returns a
// nil store when history is disabled.
func openHistory(ctx context.Context, cfg config.Config) (*history.Store, func() error, error) {
	if cfg.History.Disabled {
		return nil, func() error { return nil }, nil
	}
	dbPath := cfg.History.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Workspace, dbPath)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	store, err := history.NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

// newWorkspace builds the file and shell services rooted at the configured
// workspace.
func newWorkspace(cfg config.Config) (*workspace.Files, *workspace.Shell) {
	files := workspace.NewFiles(cfg.Workspace)
	shell := workspace.NewShell(cfg.Workspace, cfg.ShellTimeout())
	return files, shell
}
