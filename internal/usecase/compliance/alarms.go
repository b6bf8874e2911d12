package compliance

import (
	"context"
	"sort"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

type CategoryAlarm struct {
	Expiry *time.Time
	Days   *int
	State  domain.AlarmState
	// Tracked is false when the vehicle opted out of the category.
	Tracked bool
}

type VehicleCompliance struct {
	Vehicle                ports.Vehicle
	Inspection             CategoryAlarm
	TrafficInsurance       CategoryAlarm
	ComprehensiveInsurance CategoryAlarm
}

// NeedsAttention reports whether a tracked category is expired or approaching.
func (c VehicleCompliance) NeedsAttention() bool {
	for _, cat := range []CategoryAlarm{c.Inspection, c.TrafficInsurance, c.ComprehensiveInsurance} {
		if cat.Tracked && cat.State.NeedsAttention() {
			return true
		}
	}
	return false
}

type FleetSummary struct {
	Total         int
	ByStatus      map[domain.VehicleStatus]int
	Expired       int
	Approaching   int
	InspectionDue int
	InsuranceDue  int
}

// VehicleCompliance computes the alarm view of one vehicle at read time.
func (s *Service) VehicleCompliance(ctx context.Context, plate string, scope domain.Scope) (VehicleCompliance, error) {
	if err := s.ready(ctx); err != nil {
		return VehicleCompliance{}, err
	}

	vehicle, err := s.resolveVehicle(ctx, 0, plate)
	if err != nil {
		return VehicleCompliance{}, err
	}
	if !scope.Allows(vehicle.CompanyID, vehicle.LocationID) {
		return VehicleCompliance{}, notFound(ports.ErrVehicleNotFound)
	}
	return evaluateVehicle(vehicle, s.now()), nil
}

// ListAlarms returns every vehicle in scope with at least one tracked
// category expired or approaching, most urgent first.
func (s *Service) ListAlarms(ctx context.Context, scope domain.Scope) ([]VehicleCompliance, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	vehicles, err := s.repo.ListVehicles(ctx, ports.VehicleFilter{Scope: scope})
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]VehicleCompliance, 0)
	for _, v := range vehicles {
		c := evaluateVehicle(v, now)
		if c.NeedsAttention() {
			items = append(items, c)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		di, dj := minDays(items[i]), minDays(items[j])
		if di != dj {
			return di < dj
		}
		return items[i].Vehicle.Plate < items[j].Vehicle.Plate
	})
	return items, nil
}

// FleetSummary counts vehicles by status and alarm state.
func (s *Service) FleetSummary(ctx context.Context, scope domain.Scope) (FleetSummary, error) {
	if err := s.ready(ctx); err != nil {
		return FleetSummary{}, err
	}

	vehicles, err := s.repo.ListVehicles(ctx, ports.VehicleFilter{Scope: scope})
	if err != nil {
		return FleetSummary{}, err
	}

	now := s.now()
	out := FleetSummary{
		Total:    len(vehicles),
		ByStatus: make(map[domain.VehicleStatus]int),
	}
	for _, v := range vehicles {
		out.ByStatus[v.Status]++

		c := evaluateVehicle(v, now)
		worst := domain.AlarmValid
		for _, cat := range []CategoryAlarm{c.Inspection, c.TrafficInsurance, c.ComprehensiveInsurance} {
			if !cat.Tracked {
				continue
			}
			if cat.State == domain.AlarmExpired {
				worst = domain.AlarmExpired
			} else if cat.State == domain.AlarmApproaching && worst != domain.AlarmExpired {
				worst = domain.AlarmApproaching
			}
		}
		switch worst {
		case domain.AlarmExpired:
			out.Expired++
		case domain.AlarmApproaching:
			out.Approaching++
		}
		if c.Inspection.Tracked && c.Inspection.State.NeedsAttention() {
			out.InspectionDue++
		}
		if (c.TrafficInsurance.Tracked && c.TrafficInsurance.State.NeedsAttention()) ||
			(c.ComprehensiveInsurance.Tracked && c.ComprehensiveInsurance.State.NeedsAttention()) {
			out.InsuranceDue++
		}
	}
	return out, nil
}

func evaluateVehicle(v ports.Vehicle, now time.Time) VehicleCompliance {
	return VehicleCompliance{
		Vehicle:                v,
		Inspection:             categoryAlarm(v.InspectionExpiry, v.InspectionTracked, now),
		TrafficInsurance:       categoryAlarm(v.TrafficInsuranceExpiry, v.InsuranceTracked, now),
		ComprehensiveInsurance: categoryAlarm(v.ComprehensiveInsuranceExpiry, v.InsuranceTracked, now),
	}
}

func categoryAlarm(expiry *time.Time, tracked bool, now time.Time) CategoryAlarm {
	days := domain.DaysRemaining(expiry, now)
	return CategoryAlarm{
		Expiry:  expiry,
		Days:    days,
		State:   domain.AlarmFromDays(days),
		Tracked: tracked,
	}
}

func minDays(c VehicleCompliance) int {
	best := int(^uint(0) >> 1)
	for _, cat := range []CategoryAlarm{c.Inspection, c.TrafficInsurance, c.ComprehensiveInsurance} {
		if cat.Tracked && cat.Days != nil && *cat.Days < best {
			best = *cat.Days
		}
	}
	return best
}
