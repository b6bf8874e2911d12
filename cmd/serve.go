package cmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/transport/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the job scheduler",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		cfg := rt.App.Config

		if addr, _ := cmd.Flags().GetString("addr"); strings.TrimSpace(addr) != "" {
			cfg.HTTP.Addr = strings.TrimSpace(addr)
		}
		noScheduler, _ := cmd.Flags().GetBool("no-scheduler")
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		handler := httpapi.NewRouter(httpapi.Deps{
			Compliance: rt.Compliance,
			Jobs:       rt.Jobs,
			Metrics:    promhttp.HandlerFor(rt.Metrics.Registry(), promhttp.HandlerOpts{}),
			Health:     rt.App.Ping,
			CronSecret: cfg.Cron.Secret,
			APIToken:   cfg.HTTP.APIToken,
		})
		server := httpapi.NewServer(cfg.HTTP.Addr, handler)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Start(gctx)
		})
		if cfg.Scheduler.Enabled && !noScheduler {
			g.Go(func() error {
				return rt.Scheduler.Start(gctx)
			})
		} else {
			logging.Info(ctx, "scheduler disabled, jobs run only through the cron trigger")
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error(ctx, "serve failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve")
		}
		logging.Info(ctx, "serve stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Override http.addr")
	serveCmd.Flags().Bool("no-scheduler", false, "Do not start the in-process scheduler")
}
