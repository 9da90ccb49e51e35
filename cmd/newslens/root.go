package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newslens",
		Short: "News search and analysis service",
		Long: `newslens searches recent news for a topic, cleans and deduplicates the
articles, asks a generative model for an analysis and enriches it with
keyword, timeline, credibility and coverage metrics.

Configuration comes from the environment (and an optional .env file).

Example usage:
  newslens serve                      # Run the HTTP API
  newslens search "climate budget"    # Run one search and print JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSearchCmd())
	return root
}
