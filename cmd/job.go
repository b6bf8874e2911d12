package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fleetcheck/internal/errs"
	"fleetcheck/internal/usecase/jobs"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Run compliance jobs and inspect their log",
}

var jobRunCmd = &cobra.Command{
	Use:       "run <name>",
	Short:     "Run one job now (" + strings.Join(jobs.Names(), ", ") + ")",
	Args:      cobra.ExactArgs(1),
	ValidArgs: jobs.Names(),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		summary, err := rt.Jobs.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "%s %s\n%s\n", titleStyle.Render(summary.Job), dimStyle.Render("run "+summary.RunID), summary.Message); err != nil {
			return errs.Wrap(err, "write job output")
		}
		if len(summary.Vehicles) == 0 {
			return nil
		}
		rows := make([][]string, 0, len(summary.Vehicles))
		for _, v := range summary.Vehicles {
			rows = append(rows, []string{v.Plate, v.Location, daysCell(v.InspectionDays), daysCell(v.InsuranceDays)})
		}
		return renderTable(out, []string{"Plate", "Location", "Inspection", "Insurance"}, rows)
	}),
}

var jobLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent sweep log entries",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		name, _ := cmd.Flags().GetString("job")
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := rt.Jobs.Logs(cmd.Context(), name, limit)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			status := e.Status
			if status == jobs.StatusError {
				status = errorStyle.Render(status)
			}
			rows = append(rows, []string{
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				e.JobName,
				status,
				strconv.Itoa(e.AffectedCount),
				e.Message,
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Time", "Job", "Status", "Affected", "Message"}, rows)
	}),
}

var jobScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the last fired and next slot of every scheduled job",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		slots, err := rt.Scheduler.Status(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(slots))
		for _, slot := range slots {
			last := dimStyle.Render("never")
			if slot.LastSlot != nil {
				last = slot.LastSlot.Format(slotLayout)
			}
			rows = append(rows, []string{slot.Job, last, slot.NextSlot.Format(slotLayout)})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Job", "Last slot", "Next slot"}, rows)
	}),
}

const slotLayout = "Mon 2006-01-02 15:04 MST"

func daysCell(days *int) string {
	if days == nil {
		return "N/A"
	}
	return formatDays(*days)
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobRunCmd, jobLogsCmd, jobScheduleCmd)

	jobRunCmd.Flags().Bool("json", false, "Print the run summary as JSON")
	jobLogsCmd.Flags().String("job", "", "Only show entries of this job")
	jobLogsCmd.Flags().Int("limit", 20, "Maximum number of entries")
}
