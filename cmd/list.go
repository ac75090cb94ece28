// Package cmd — list command. Prints the catalog, newest first.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webshelf/config"
	"github.com/gaurav-prasanna/webshelf/core/library"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all saved articles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lib, err := library.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}

	records := lib.List()
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing saved yet.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(os.Stdout, "%s  %-28s  %s\n",
			rec.SavedAt.Format("2006-01-02 15:04"), rec.Domain, rec.Title)
	}
	return nil
}
