package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [plate]",
	Short: "Recompute denormalized expiry dates from the record history",
	Long: "Recompute inspection and insurance expiry dates of one vehicle, or of the\n" +
		"whole fleet when no plate is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			count, err := rt.Compliance.ReconcileFleet(ctx, domain.Scope{})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "reconciled %d vehicles\n", count); err != nil {
				return errs.Wrap(err, "write reconcile output")
			}
			return nil
		}

		view, err := rt.Compliance.VehicleCompliance(ctx, args[0], domain.Scope{})
		if err != nil {
			return err
		}
		expiries, err := rt.Compliance.ReconcileVehicle(ctx, view.Vehicle.ID)
		if err != nil {
			return err
		}
		return renderTable(out, []string{"Field", "Expiry"}, [][]string{
			{"inspection", formatDatePtr(expiries.Inspection)},
			{"traffic insurance", formatDatePtr(expiries.TrafficInsurance)},
			{"comprehensive insurance", formatDatePtr(expiries.ComprehensiveInsurance)},
		})
	}),
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
