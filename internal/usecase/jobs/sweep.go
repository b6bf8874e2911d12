package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"fleetcheck/internal/bootstrap/logging"
	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/notify"
)

func (r *Runner) sweepExpiredVehicles(ctx context.Context) (Summary, error) {
	now := r.now()

	vehicles, err := r.repo.ListVehicles(ctx, ports.VehicleFilter{
		Statuses: []domain.VehicleStatus{domain.StatusActive},
	})
	if err != nil {
		return Summary{}, errs.Wrap(err, "list active vehicles")
	}

	var (
		ids       []uint
		items     []notify.ExpiryAlertItem
		locations []string
	)
	for _, v := range vehicles {
		var inspectionDays, insuranceDays *int
		if v.InspectionTracked {
			inspectionDays = domain.DaysRemaining(v.InspectionExpiry, now)
		}
		if v.InsuranceTracked {
			insuranceDays = domain.DaysRemaining(v.TrafficInsuranceExpiry, now)
		}
		if !negative(inspectionDays) && !negative(insuranceDays) {
			continue
		}

		if _, err := domain.NewStatusMachine(v.Status).Fire(ctx, domain.EventPark); err != nil {
			logging.Warn(ctx, "skip vehicle that cannot be parked",
				slog.String("plate", v.Plate),
				slog.String("status", string(v.Status)),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}

		ids = append(ids, v.ID)
		items = append(items, notify.ExpiryAlertItem{
			Plate:          v.Plate,
			Location:       orDash(v.LocationName),
			InspectionDays: inspectionDays,
			InsuranceDays:  insuranceDays,
		})
		if v.LocationResponsibleEmail != nil {
			locations = append(locations, *v.LocationResponsibleEmail)
		}
	}

	if len(ids) == 0 {
		return Summary{Message: "no expired vehicles found"}, nil
	}

	parked, err := r.repo.ParkActiveVehicles(ctx, ids)
	if err != nil {
		return Summary{}, errs.Wrap(err, "park expired vehicles")
	}
	r.metrics.AddVehiclesParked(int(parked))

	recipients := domain.MergeRecipients([]string{r.cfg.AdminEmail}, locations)
	outcome := "no recipients"
	notified := false
	if len(recipients) > 0 {
		notified = r.dispatcher.SendExpiryAlert(ctx, recipients, items)
		outcome = "notification failed"
		if notified {
			outcome = "notification sent"
		}
	}

	return Summary{
		Message:    fmt.Sprintf("parked %d expired vehicles, %s", parked, outcome),
		Affected:   int(parked),
		Recipients: len(recipients),
		Notified:   notified,
		Vehicles:   items,
	}, nil
}

func negative(days *int) bool {
	return days != nil && *days < 0
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
