package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fleetcheck/internal/bootstrap/logging"
	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/usecase/compliance"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or migrate the database schema",
	Long: "Create or migrate the database schema. With --admin, also register that\n" +
		"email as a super_admin unless the user already exists.",
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		driver := rt.App.Config.Database.Driver

		if err := rt.App.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}
		logging.Info(ctx, "schema migrated", slog.String("database_driver", driver))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized (%s)\n", driver); err != nil {
			return errs.Wrap(err, "write init-db output")
		}

		admin, _ := cmd.Flags().GetString("admin")
		admin = strings.TrimSpace(admin)
		if admin == "" {
			return nil
		}

		_, err := rt.Compliance.ScopeForEmail(ctx, admin)
		switch {
		case err == nil:
			logging.Info(ctx, "admin user already exists", slog.String("email", admin))
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		user, err := rt.Compliance.RegisterUser(ctx, compliance.RegisterUserInput{
			Email: admin,
			Name:  "Administrator",
			Role:  string(domain.RoleSuperAdmin),
		})
		if err != nil {
			return err
		}
		return printCreated(cmd, "user", user.ID, user.Email)
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)

	initDbCmd.Flags().String("admin", "", "Register this email as super_admin")
}
