package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
)

var vehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Inspect vehicle compliance and change vehicle status",
}

var vehicleShowCmd = &cobra.Command{
	Use:   "show <plate>",
	Short: "Show the compliance view of one vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		scope, err := scopeFromFlag(cmd, rt)
		if err != nil {
			return err
		}
		view, err := rt.Compliance.VehicleCompliance(cmd.Context(), args[0], scope)
		if err != nil {
			return err
		}
		return renderCompliance(cmd.OutOrStdout(), view)
	}),
}

var vehicleAlarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "List vehicles with expired or approaching documents",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		scope, err := scopeFromFlag(cmd, rt)
		if err != nil {
			return err
		}
		items, err := rt.Compliance.ListAlarms(cmd.Context(), scope)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				item.Vehicle.Plate,
				string(item.Vehicle.Status),
				orDash(item.Vehicle.LocationName),
				renderAlarm(item.Inspection),
				renderAlarm(item.TrafficInsurance),
				renderAlarm(item.ComprehensiveInsurance),
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Plate", "Status", "Location", "Inspection", "Traffic", "Comprehensive"}, rows)
	}),
}

var vehicleSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count vehicles by status and alarm state",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		scope, err := scopeFromFlag(cmd, rt)
		if err != nil {
			return err
		}
		summary, err := rt.Compliance.FleetSummary(cmd.Context(), scope)
		if err != nil {
			return err
		}

		statuses := make([]string, 0, len(summary.ByStatus))
		for status := range summary.ByStatus {
			statuses = append(statuses, string(status))
		}
		sort.Strings(statuses)

		rows := [][]string{{"total", strconv.Itoa(summary.Total)}}
		for _, status := range statuses {
			rows = append(rows, []string{"status " + status, strconv.Itoa(summary.ByStatus[domain.VehicleStatus(status)])})
		}
		rows = append(rows,
			[]string{"expired", strconv.Itoa(summary.Expired)},
			[]string{"approaching", strconv.Itoa(summary.Approaching)},
			[]string{"inspection due", strconv.Itoa(summary.InspectionDue)},
			[]string{"insurance due", strconv.Itoa(summary.InsuranceDue)},
		)
		return renderTable(cmd.OutOrStdout(), []string{"Metric", "Vehicles"}, rows)
	}),
}

var vehicleStatusCmd = &cobra.Command{
	Use:   "status <plate> <active|parked|legal_hold|maintenance>",
	Short: "Move a vehicle through the status machine",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		transition, err := rt.Compliance.ChangeVehicleStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (%s)\n",
			strings.ToUpper(strings.TrimSpace(args[0])), transition.From, transition.To, transition.Event); err != nil {
			return errs.Wrap(err, "write status output")
		}
		return nil
	}),
}

// scopeFromFlag narrows reads to what the --as user may see. Without
// the flag the caller acts as an operator with the full fleet.
func scopeFromFlag(cmd *cobra.Command, rt *runtime) (domain.Scope, error) {
	email, _ := cmd.Flags().GetString("as")
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Scope{}, nil
	}
	return rt.Compliance.ScopeForEmail(cmd.Context(), email)
}

func init() {
	rootCmd.AddCommand(vehicleCmd)
	vehicleCmd.AddCommand(vehicleShowCmd, vehicleAlarmsCmd, vehicleSummaryCmd, vehicleStatusCmd)

	for _, c := range []*cobra.Command{vehicleShowCmd, vehicleAlarmsCmd, vehicleSummaryCmd} {
		c.Flags().String("as", "", "Restrict the view to what this user email may see")
	}
}
