package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skovand/redline/internal/httpapi"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the preview and apply operations over HTTP for editor
integrations. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := newLogger()
		files, shell := newWorkspace(cfg)

		store, closeDB, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		// A nil *history.Store must become a nil interface, not a typed nil.
		var batchStore httpapi.BatchStore
		if store != nil {
			batchStore = store
		}

		server := httpapi.NewServer(cfg.Workspace, files, shell, batchStore, logger)
		bound, err := server.Start(cmd.Context(), cfg.Server.Address)
		if err != nil {
			return err
		}
		fmt.Printf("redline API listening on %s\n", bound)

		<-cmd.Context().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides config)")
}
