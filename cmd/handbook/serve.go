// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the handbook HTTP server",
		Long:  "Load configuration and the knowledge base, then serve the chat API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	app, err := WireApp(cfg, secretStoreFactory())
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("closing app", "error", err)
		}
	}()

	srv, err := app.NewServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.Provider != nil {
		// The first probe runs in the background so a slow provider never
		// delays startup.
		go func() {
			if err := app.Provider.Probe(ctx); err != nil {
				slog.Warn("generative provider probe failed", "provider", app.Provider.Name(), "error", err)
				return
			}
			slog.Info("generative provider reachable", "provider", app.Provider.Name())
		}()
	}

	return srv.Start(ctx)
}

// contextOrBackground returns cmd's context, which is nil when a command
// runs outside ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
