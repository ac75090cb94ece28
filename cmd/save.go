// Package cmd — save command. Captures a single URL from the command line,
// sharing the catalog and artifact store with the server.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webshelf/config"
	"github.com/gaurav-prasanna/webshelf/core/library"
	"github.com/gaurav-prasanna/webshelf/logging"
)

var saveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Capture one web page into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lib, err := library.Open(cfg.DataDir,
		library.WithLogger(logging.New(cfg.LogLevel)),
		library.WithFetcher(newFetcher(cfg.Fetch)),
	)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}

	record, err := lib.Submit(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "✓ Saved %q (%s) as %s\n", record.Title, record.Domain, record.ID)
	return nil
}
