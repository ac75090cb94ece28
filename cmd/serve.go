// Package cmd — serve command. Opens the library, reconciles any artifacts
// orphaned by an earlier crash, and serves the HTTP API and index page.
package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webshelf/config"
	"github.com/gaurav-prasanna/webshelf/core/fetch"
	"github.com/gaurav-prasanna/webshelf/core/library"
	"github.com/gaurav-prasanna/webshelf/logging"
	"github.com/gaurav-prasanna/webshelf/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webshelf HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAuth(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)

	lib, err := library.Open(cfg.DataDir,
		library.WithLogger(logger),
		library.WithFetcher(newFetcher(cfg.Fetch)),
	)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}

	if _, err := lib.Reconcile(); err != nil {
		logger.Warn("startup reconciliation failed", "error", err)
	}

	srv := server.New(lib, logger, cfg.PageSize)
	logger.Info("listening", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
	return http.ListenAndServe(cfg.ListenAddr, srv.Handler(cfg.Auth.Username, cfg.Auth.Password))
}

// newFetcher applies the optional fetch tuning from config.
func newFetcher(cfg config.FetchConfig) *fetch.HTTPFetcher {
	var opts []fetch.Option
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, fetch.WithTimeout(cfg.Timeout()))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}
	return fetch.New(opts...)
}
