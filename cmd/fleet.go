package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fleetcheck/internal/errs"
	"fleetcheck/internal/usecase/compliance"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Register companies, locations, vehicles and users",
}

var (
	fleetCompanyCmd  = &cobra.Command{Use: "company", Short: "Manage companies"}
	fleetLocationCmd = &cobra.Command{Use: "location", Short: "Manage locations"}
	fleetVehicleCmd  = &cobra.Command{Use: "vehicle", Short: "Manage vehicles"}
	fleetUserCmd     = &cobra.Command{Use: "user", Short: "Manage back-office users"}
)

var fleetCompanyAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a company",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		company, err := rt.Compliance.RegisterCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printCreated(cmd, "company", company.ID, company.Name)
	}),
}

var fleetLocationAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a location under a company",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		companyID, _ := cmd.Flags().GetUint("company")
		email, _ := cmd.Flags().GetString("responsible-email")

		location, err := rt.Compliance.RegisterLocation(cmd.Context(), companyID, args[0], email)
		if err != nil {
			return err
		}
		return printCreated(cmd, "location", location.ID, location.Name)
	}),
}

var fleetVehicleAddCmd = &cobra.Command{
	Use:   "add <plate>",
	Short: "Register a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		status, _ := cmd.Flags().GetString("status")
		inspectionTracked, _ := cmd.Flags().GetBool("inspection-tracked")
		insuranceTracked, _ := cmd.Flags().GetBool("insurance-tracked")

		vehicle, err := rt.Compliance.RegisterVehicle(cmd.Context(), compliance.RegisterVehicleInput{
			Plate:             args[0],
			CompanyID:         uintFlag(cmd, "company"),
			LocationID:        uintFlag(cmd, "location"),
			Status:            status,
			InspectionTracked: inspectionTracked,
			InsuranceTracked:  insuranceTracked,
		})
		if err != nil {
			return err
		}
		return printCreated(cmd, "vehicle", vehicle.ID, vehicle.Plate)
	}),
}

var fleetUserAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Register a back-office user",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, rt *runtime) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		user, err := rt.Compliance.RegisterUser(cmd.Context(), compliance.RegisterUserInput{
			Email:      args[0],
			Name:       name,
			Role:       role,
			CompanyID:  uintFlag(cmd, "company"),
			LocationID: uintFlag(cmd, "location"),
		})
		if err != nil {
			return err
		}
		return printCreated(cmd, "user", user.ID, user.Email)
	}),
}

// uintFlag returns nil for flags the caller did not set.
func uintFlag(cmd *cobra.Command, name string) *uint {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetUint(name)
	return &v
}

func printCreated(cmd *cobra.Command, kind string, id uint, label string) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created %s #%d %s\n", kind, id, strings.TrimSpace(label)); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fleetCmd)
	fleetCmd.AddCommand(fleetCompanyCmd, fleetLocationCmd, fleetVehicleCmd, fleetUserCmd)
	fleetCompanyCmd.AddCommand(fleetCompanyAddCmd)
	fleetLocationCmd.AddCommand(fleetLocationAddCmd)
	fleetVehicleCmd.AddCommand(fleetVehicleAddCmd)
	fleetUserCmd.AddCommand(fleetUserAddCmd)

	fleetLocationAddCmd.Flags().Uint("company", 0, "Owning company id")
	fleetLocationAddCmd.Flags().String("responsible-email", "", "Email of the location chief")
	_ = fleetLocationAddCmd.MarkFlagRequired("company")

	fleetVehicleAddCmd.Flags().Uint("company", 0, "Company id")
	fleetVehicleAddCmd.Flags().Uint("location", 0, "Location id")
	fleetVehicleAddCmd.Flags().String("status", "active", "Initial status")
	fleetVehicleAddCmd.Flags().Bool("inspection-tracked", true, "Track periodic inspection for this vehicle")
	fleetVehicleAddCmd.Flags().Bool("insurance-tracked", true, "Track traffic insurance for this vehicle")

	fleetUserAddCmd.Flags().String("name", "", "Display name")
	fleetUserAddCmd.Flags().String("role", "location_chief", "super_admin, company_manager or location_chief")
	fleetUserAddCmd.Flags().Uint("company", 0, "Company id")
	fleetUserAddCmd.Flags().Uint("location", 0, "Location id")
}
