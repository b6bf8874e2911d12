package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fleetcheck",
	Short: "Fleet compliance expiry tracking and alarms",
	Long: "fleetcheck tracks inspection and insurance expiry per vehicle, parks vehicles\n" +
		"whose documents lapsed and mails expiry alerts and a weekly digest.",
	SilenceUsage: true,
}

// Execute runs the CLI with a stderr text logger until the command
// loads its own logging config.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger, err := logging.NewLogger(rootCmd.ErrOrStderr(), "text", "info")
	if err != nil {
		return errs.Wrap(err, "create bootstrap logger")
	}
	ctx = logging.WithAttrs(logging.WithLogger(ctx, logger), slog.String("app", "fleetcheck"))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute command")
	}
	return nil
}

// logLevel is the configured level unless --verbose asks for debug output.
func logLevel(configured string) string {
	if verbose {
		return "debug"
	}
	return configured
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}
