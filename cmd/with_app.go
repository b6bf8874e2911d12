package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"fleetcheck/internal/bootstrap"
	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	metricsinfra "fleetcheck/internal/infrastructure/metrics"
	"fleetcheck/internal/infrastructure/scheduler"
	"fleetcheck/internal/usecase/compliance"
	"fleetcheck/internal/usecase/jobs"
)

// runtime is what commands get from the fx graph.
type runtime struct {
	App        *bootstrap.App
	Compliance *compliance.Service
	Jobs       *jobs.Runner
	Scheduler  *scheduler.Scheduler
	Metrics    *metricsinfra.JobMetrics
}

func withApp(run func(cmd *cobra.Command, args []string, rt *runtime) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		rt := &runtime{}
		fxApp := fx.New(
			bootstrap.Module,
			fx.NopLogger,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&rt.App, &rt.Compliance, &rt.Jobs, &rt.Scheduler, &rt.Metrics),
		)
		if err := fxApp.Err(); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build fx application")
		}

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		logCfg := rt.App.Config.Log
		logger, err := logging.NewLogger(cmd.ErrOrStderr(), logCfg.Format, logLevel(logCfg.Level))
		if err != nil {
			return errs.Wrap(err, "configure logger")
		}
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

		if err := run(cmd, args, rt); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
