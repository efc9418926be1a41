package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Desarso/fitcoach/scheduler"
	"github.com/Desarso/fitcoach/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the tip scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	cfg, coach, err := a.openCoach()
	if err != nil {
		return err
	}
	defer coach.Close()
	if addr == "" {
		addr = cfg.Addr
	}

	tips, err := scheduler.New(scheduler.Options{
		Tips:        coach.Gateway,
		Profiles:    coach.Store,
		Pruner:      coach.Store,
		TipSchedule: cfg.TipSchedule,
		Retention:   cfg.TraceRetention,
		Logger:      a.logger.Named("scheduler"),
	})
	if err != nil {
		return err
	}
	srv, err := server.New(server.Options{
		Coach:        coach,
		Tips:         tips,
		AllowOrigins: cfg.AllowOrigins,
		Logger:       a.logger.Named("server"),
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, addr) })
	g.Go(func() error { return tips.Run(ctx) })

	a.logger.Info("FitCoach serving", zap.String("addr", addr), zap.String("store", cfg.Store.Type))
	return g.Wait()
}
