// Package cmd implements the CLI commands for webshelf using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webshelf",
	Short: "webshelf — save web pages as readable PDFs in a personal catalog",
	Long: `webshelf captures a web page, extracts its readable content, renders it
into an e-reader friendly PDF, and records it in a small persistent catalog.

Usage:
  webshelf serve            run the HTTP server
  webshelf save <url>       capture one page from the command line
  webshelf list             print the catalog`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
