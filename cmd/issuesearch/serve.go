package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"issuesearch/internal/api"
	"issuesearch/internal/backend"
	"issuesearch/internal/obs"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recent-search and tag-value HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runServe(ctx, flags, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides listen_addr")
	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, listen string) error {
	cfg, _, err := loadConfig(flags, nil)
	if err != nil {
		return err
	}
	obs.Init(cfg.LogLevel, os.Stderr)
	logger := obs.Logger("serve")

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()
	if be.IsRemote() {
		return errors.New("serve needs a local backend (memory, sqlite or postgres)")
	}

	addr := cfg.ListenAddr
	if listen != "" {
		addr = listen
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(be.Store, be.Catalog, cfg.APIToken, obs.Logger("api")).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("backend", be.Name).Bool("auth", cfg.APIToken != "").Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
