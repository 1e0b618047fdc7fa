package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr    string
		preload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cat, cleanup, err := newCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if preload {
				if _, err := cat.LoadAll(ctx); err != nil {
					return fmt.Errorf("preload catalog: %w", err)
				}
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           newAPI(cat, cfg.Catalog.DefaultLimit).routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().
					Str("addr", cfg.Server.Addr).
					Str("source", cfg.Source.Kind).
					Msg("Starting catalog server")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down catalog server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&preload, "preload", false, "load every document before accepting requests")
	return cmd
}
