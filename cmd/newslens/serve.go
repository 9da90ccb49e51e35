package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/newslens/internal/config"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(parent context.Context, port string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	if version != "" {
		cfg.AppVersion = version
	}
	log := logger.Init(cfg.Debug, cfg.LogFormat)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	d, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.close()

	srv := server.New(d.pipeline, d.metrics, server.Options{
		Version:       cfg.AppVersion,
		Debug:         cfg.Debug,
		HealthTimeout: cfg.RequestTimeout,
		Stats:         d.stats,
	}, log)

	log.Info("Configuration loaded",
		"search_provider", cfg.SearchProvider,
		"ai_provider", cfg.AIProvider,
		"port", cfg.Port,
		"version", cfg.AppVersion)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited properly")
	return nil
}
