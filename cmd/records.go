package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fleetcheck/internal/errs"
	"fleetcheck/internal/usecase/compliance"
)

var inspectionCmd = &cobra.Command{
	Use:   "inspection",
	Short: "Manage inspection records",
}

var inspectionAddCmd = &cobra.Command{
	Use:   "add <plate>",
	Short: "Record an inspection and reconcile the vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		flags := cmd.Flags()
		inspectedAt, err := dateFlag(flags, "inspected-at")
		if err != nil {
			return err
		}
		validUntil, err := dateFlag(flags, "valid-until")
		if err != nil {
			return err
		}
		outcome, _ := flags.GetString("outcome")
		kind, _ := flags.GetString("kind")

		result, err := rt.Compliance.CreateInspection(cmd.Context(), compliance.CreateInspectionInput{
			Plate:         args[0],
			InspectedAt:   inspectedAt,
			ValidUntil:    validUntil,
			Outcome:       outcome,
			Kind:          kind,
			Station:       valueOf(stringFlag(flags, "station")),
			StationRegion: valueOf(stringFlag(flags, "station-region")),
			ReportNo:      valueOf(stringFlag(flags, "report-no")),
			Fee:           floatFlag(flags, "fee"),
			FailureReason: valueOf(stringFlag(flags, "failure-reason")),
			FailureDetail: valueOf(stringFlag(flags, "failure-detail")),
			Notes:         valueOf(stringFlag(flags, "notes")),
		})
		if err != nil {
			return err
		}
		return printRecordResult(cmd, "inspection", result.Record.ID, result.VehicleExpiry)
	}),
}

var inspectionUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Patch an inspection record; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		inspectedAt, err := dateFlag(flags, "inspected-at")
		if err != nil {
			return err
		}
		validUntil, err := dateFlag(flags, "valid-until")
		if err != nil {
			return err
		}

		result, err := rt.Compliance.UpdateInspection(cmd.Context(), compliance.UpdateInspectionInput{
			ID:            id,
			InspectedAt:   inspectedAt,
			ValidUntil:    validUntil,
			Outcome:       stringFlag(flags, "outcome"),
			Kind:          stringFlag(flags, "kind"),
			Station:       stringFlag(flags, "station"),
			StationRegion: stringFlag(flags, "station-region"),
			ReportNo:      stringFlag(flags, "report-no"),
			Fee:           floatFlag(flags, "fee"),
			FailureReason: stringFlag(flags, "failure-reason"),
			FailureDetail: stringFlag(flags, "failure-detail"),
			Notes:         stringFlag(flags, "notes"),
		})
		if err != nil {
			return err
		}
		return printRecordResult(cmd, "inspection", result.Record.ID, result.VehicleExpiry)
	}),
}

var inspectionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an inspection record and reconcile the vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		result, err := rt.Compliance.DeleteInspection(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printDeleteResult(cmd, "inspection", id, result)
	}),
}

var inspectionListCmd = &cobra.Command{
	Use:   "list <plate>",
	Short: "List the inspection history of a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		records, err := rt.Compliance.ListInspections(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(r.ID), 10),
				r.InspectedAt.Format(cliDateLayout),
				r.ValidUntil.Format(cliDateLayout),
				string(r.Outcome),
				string(r.Kind),
				orDash(r.Station),
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"ID", "Inspected", "Valid until", "Outcome", "Kind", "Station"}, rows)
	}),
}

var insuranceCmd = &cobra.Command{
	Use:   "insurance",
	Short: "Manage insurance policies",
}

var insuranceAddCmd = &cobra.Command{
	Use:   "add <plate>",
	Short: "Record an insurance policy and reconcile the vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		flags := cmd.Flags()
		startsAt, err := dateFlag(flags, "starts-at")
		if err != nil {
			return err
		}
		validUntil, err := dateFlag(flags, "valid-until")
		if err != nil {
			return err
		}
		paidAt, err := dateFlag(flags, "paid-at")
		if err != nil {
			return err
		}
		subType, _ := flags.GetString("sub-type")

		result, err := rt.Compliance.CreateInsurance(cmd.Context(), compliance.CreateInsuranceInput{
			Plate:            args[0],
			SubType:          subType,
			PolicyNo:         valueOf(stringFlag(flags, "policy-no")),
			Insurer:          valueOf(stringFlag(flags, "insurer")),
			AgencyName:       valueOf(stringFlag(flags, "agency-name")),
			AgencyPhone:      valueOf(stringFlag(flags, "agency-phone")),
			StartsAt:         startsAt,
			ValidUntil:       validUntil,
			Premium:          floatFlag(flags, "premium"),
			PaymentStatus:    valueOf(stringFlag(flags, "payment-status")),
			PaymentPlan:      valueOf(stringFlag(flags, "payment-plan")),
			InstallmentCount: intFlag(flags, "installments"),
			PaidAt:           paidAt,
			Coverage:         valueOf(stringFlag(flags, "coverage")),
			Notes:            valueOf(stringFlag(flags, "notes")),
		})
		if err != nil {
			return err
		}
		return printRecordResult(cmd, "insurance", result.Record.ID, result.VehicleExpiry)
	}),
}

var insuranceUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Patch an insurance policy; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		startsAt, err := dateFlag(flags, "starts-at")
		if err != nil {
			return err
		}
		validUntil, err := dateFlag(flags, "valid-until")
		if err != nil {
			return err
		}
		paidAt, err := dateFlag(flags, "paid-at")
		if err != nil {
			return err
		}

		result, err := rt.Compliance.UpdateInsurance(cmd.Context(), compliance.UpdateInsuranceInput{
			ID:               id,
			SubType:          stringFlag(flags, "sub-type"),
			PolicyNo:         stringFlag(flags, "policy-no"),
			Insurer:          stringFlag(flags, "insurer"),
			AgencyName:       stringFlag(flags, "agency-name"),
			AgencyPhone:      stringFlag(flags, "agency-phone"),
			StartsAt:         startsAt,
			ValidUntil:       validUntil,
			Premium:          floatFlag(flags, "premium"),
			PaymentStatus:    stringFlag(flags, "payment-status"),
			PaymentPlan:      stringFlag(flags, "payment-plan"),
			InstallmentCount: intFlag(flags, "installments"),
			PaidAt:           paidAt,
			Coverage:         stringFlag(flags, "coverage"),
			Notes:            stringFlag(flags, "notes"),
		})
		if err != nil {
			return err
		}
		return printRecordResult(cmd, "insurance", result.Record.ID, result.VehicleExpiry)
	}),
}

var insuranceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an insurance policy and reconcile the vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		result, err := rt.Compliance.DeleteInsurance(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printDeleteResult(cmd, "insurance", id, result)
	}),
}

var insuranceListCmd = &cobra.Command{
	Use:   "list <plate>",
	Short: "List the insurance policies of a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		records, err := rt.Compliance.ListInsurances(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(r.ID), 10),
				string(r.SubType),
				orDash(r.PolicyNo),
				orDash(r.Insurer),
				r.StartsAt.Format(cliDateLayout),
				r.ValidUntil.Format(cliDateLayout),
				string(r.PaymentStatus),
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"ID", "Sub-type", "Policy", "Insurer", "Starts", "Valid until", "Payment"}, rows)
	}),
}

func parseRecordID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return uint(id), nil
}

func dateFlag(flags *pflag.FlagSet, name string) (*time.Time, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	raw, _ := flags.GetString(name)
	return parseDateFlag(name, raw)
}

func stringFlag(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func floatFlag(flags *pflag.FlagSet, name string) *float64 {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetFloat64(name)
	return &v
}

func intFlag(flags *pflag.FlagSet, name string) *int {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetInt(name)
	return &v
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func printRecordResult(cmd *cobra.Command, kind string, id uint, expiry *time.Time) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s #%d saved, vehicle expiry now %s\n", kind, id, formatDatePtr(expiry)); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func printDeleteResult(cmd *cobra.Command, kind string, id uint, result compliance.DeleteResult) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s #%d deleted, vehicle #%d expiry now %s\n", kind, id, result.VehicleID, formatDatePtr(result.VehicleExpiry)); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func addInspectionFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("inspected-at", "", "Inspection date (YYYY-MM-DD)")
	f.String("valid-until", "", "Validity end date (YYYY-MM-DD)")
	f.String("outcome", "passed", "passed or failed")
	f.String("kind", "periodic", "periodic, supplementary or special")
	f.String("station", "", "Inspection station")
	f.String("station-region", "", "Station region")
	f.String("report-no", "", "Report number")
	f.Float64("fee", 0, "Fee paid")
	f.String("failure-reason", "", "Reason when the inspection failed")
	f.String("failure-detail", "", "Failure details")
	f.String("notes", "", "Free-form notes")
}

func addInsuranceFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("sub-type", "traffic", "traffic, comprehensive or supplementary_liability")
	f.String("policy-no", "", "Policy number")
	f.String("insurer", "", "Insurer")
	f.String("agency-name", "", "Agency name")
	f.String("agency-phone", "", "Agency phone")
	f.String("starts-at", "", "Coverage start date (YYYY-MM-DD)")
	f.String("valid-until", "", "Coverage end date (YYYY-MM-DD)")
	f.Float64("premium", 0, "Premium amount")
	f.String("payment-status", "", "unpaid, paid or partial")
	f.String("payment-plan", "", "Payment plan")
	f.Int("installments", 0, "Installment count")
	f.String("paid-at", "", "Payment date (YYYY-MM-DD)")
	f.String("coverage", "", "Coverage description")
	f.String("notes", "", "Free-form notes")
}

func init() {
	rootCmd.AddCommand(inspectionCmd, insuranceCmd)
	inspectionCmd.AddCommand(inspectionAddCmd, inspectionUpdateCmd, inspectionDeleteCmd, inspectionListCmd)
	insuranceCmd.AddCommand(insuranceAddCmd, insuranceUpdateCmd, insuranceDeleteCmd, insuranceListCmd)

	addInspectionFlags(inspectionAddCmd)
	addInspectionFlags(inspectionUpdateCmd)
	addInsuranceFlags(insuranceAddCmd)
	addInsuranceFlags(insuranceUpdateCmd)
}
