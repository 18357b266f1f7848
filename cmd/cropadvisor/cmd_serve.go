package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/cropadvisor/internal/api"
	"github.com/HerbHall/cropadvisor/internal/server"
	"github.com/HerbHall/cropadvisor/internal/session"
	"github.com/HerbHall/cropadvisor/internal/version"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	cmd.Flags().String("host", "", "listen host (default from config)")
	cmd.Flags().Int("port", 0, "listen port (default from config)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("cropadvisor server starting", zap.String("version", version.Short()))

	adv, err := a.loadAdvisor(ctx)
	if err != nil {
		return err
	}

	addr := a.settings.Server.Addr()
	srv := server.New(addr, a.logger.Named("server"),
		server.Options{
			RateLimitRPS:   a.settings.RateLimit.RPS,
			RateLimitBurst: a.settings.RateLimit.Burst,
		},
		api.NewHandler(adv, session.NewStore(), a.logger.Named("api")),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.settings.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
			return err
		}
		return nil
	})

	a.logger.Info("cropadvisor server ready", zap.String("addr", addr))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("cropadvisor server stopped")
	return nil
}
