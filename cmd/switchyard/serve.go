package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/switchyard-ai/switchyard/internal/adapters/http"
	"github.com/switchyard-ai/switchyard/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the REST API (chat, session management, health, metrics, OpenAPI)
plus the background session sweeper, and shuts both down gracefully on
SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		rt, err := cli.Build(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}
		defer rt.Close()

		handler, err := httpadapter.NewHandler(rt.Engine,
			httpadapter.WithLogger(logger),
			httpadapter.WithMetrics(rt.HTTPMetrics),
			httpadapter.WithGatherer(rt.Registry),
		)
		if err != nil {
			return fmt.Errorf("failed to build handler: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		// The sweeper only touches the in-process fallback store; Redis
		// expires its own keys.
		sweepCtx, stopSweeper := context.WithCancel(context.Background())
		defer stopSweeper()
		go rt.Sweeper.Run(sweepCtx)

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
