package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/deusflow/newslens/internal/app"
	"github.com/deusflow/newslens/internal/config"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var req app.SearchRequest
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = args[0]
			return runSearch(cmd.Context(), req)
		},
	}
	cmd.Flags().IntVarP(&req.MaxArticles, "max-articles", "n", app.DefaultMaxArticles, "articles to collect (5-50)")
	cmd.Flags().StringVarP(&req.TimeRange, "time-range", "t", app.DefaultTimeRange, "1h, 6h, 12h, 24h, 48h, 7d or 30d")
	cmd.Flags().StringSliceVar(&req.IncludeSources, "include", nil, "only these source domains")
	cmd.Flags().StringSliceVar(&req.ExcludeSources, "exclude", nil, "skip these source domains")
	return cmd
}

func runSearch(ctx context.Context, req app.SearchRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the response.
	log := logger.InitTo(os.Stderr, cfg.Debug, cfg.LogFormat)

	req.Normalize()
	if err := app.Validate(app.NewValidator(), req); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	d, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.close()

	resp, err := d.pipeline.ProcessSearchRequest(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
