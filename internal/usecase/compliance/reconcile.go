package compliance

import (
	"context"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

// VehicleExpiries is the reconciled state of all denormalized fields.
type VehicleExpiries struct {
	Inspection             *time.Time
	TrafficInsurance       *time.Time
	ComprehensiveInsurance *time.Time
}

// ReconcileInspectionExpiry recomputes inspectionExpiry from the vehicle's
// passed inspections. It joins the caller's transaction when there is one.
func (s *Service) ReconcileInspectionExpiry(ctx context.Context, vehicleID uint) (*time.Time, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var latest *time.Time
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetVehicle(txCtx, vehicleID); err != nil {
			return notFound(err)
		}
		var err error
		latest, err = s.reconcileInspectionTx(txCtx, vehicleID)
		return err
	}); err != nil {
		return nil, err
	}
	return latest, nil
}

// ReconcileInsuranceExpiry recomputes the expiry field fed by subType.
func (s *Service) ReconcileInsuranceExpiry(ctx context.Context, vehicleID uint, subType domain.InsuranceSubType) (*time.Time, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if !subType.FeedsExpiryField() {
		return nil, invalid("insurance sub-type %q has no vehicle expiry field", subType)
	}

	var latest *time.Time
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetVehicle(txCtx, vehicleID); err != nil {
			return notFound(err)
		}
		var err error
		latest, err = s.reconcileInsuranceTx(txCtx, vehicleID, subType)
		return err
	}); err != nil {
		return nil, err
	}
	return latest, nil
}

// ReconcileVehicle re-establishes every expiry field of one vehicle.
func (s *Service) ReconcileVehicle(ctx context.Context, vehicleID uint) (VehicleExpiries, error) {
	if err := s.ready(ctx); err != nil {
		return VehicleExpiries{}, err
	}

	var out VehicleExpiries
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetVehicle(txCtx, vehicleID); err != nil {
			return notFound(err)
		}

		var err error
		if out.Inspection, err = s.reconcileInspectionTx(txCtx, vehicleID); err != nil {
			return err
		}
		if out.TrafficInsurance, err = s.reconcileInsuranceTx(txCtx, vehicleID, domain.SubTypeTraffic); err != nil {
			return err
		}
		out.ComprehensiveInsurance, err = s.reconcileInsuranceTx(txCtx, vehicleID, domain.SubTypeComprehensive)
		return err
	}); err != nil {
		return VehicleExpiries{}, err
	}
	return out, nil
}

// ReconcileFleet repairs every vehicle in scope and returns how many were visited.
func (s *Service) ReconcileFleet(ctx context.Context, scope domain.Scope) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	vehicles, err := s.repo.ListVehicles(ctx, ports.VehicleFilter{Scope: scope})
	if err != nil {
		return 0, err
	}
	for _, v := range vehicles {
		if _, err := s.ReconcileVehicle(ctx, v.ID); err != nil {
			return 0, err
		}
	}
	return len(vehicles), nil
}

func (s *Service) reconcileInspectionTx(ctx context.Context, vehicleID uint) (*time.Time, error) {
	records, err := s.repo.ListInspections(ctx, vehicleID)
	if err != nil {
		return nil, reconciliationFailed(err, "list inspections")
	}

	validity := make([]domain.InspectionValidity, 0, len(records))
	for _, rec := range records {
		validity = append(validity, domain.InspectionValidity{ValidUntil: rec.ValidUntil, Outcome: rec.Outcome})
	}

	latest := domain.LatestPassedInspection(validity)
	if err := s.repo.SetVehicleExpiry(ctx, vehicleID, ports.ExpiryInspection, latest); err != nil {
		return nil, reconciliationFailed(err, "write inspection expiry")
	}
	return latest, nil
}

func (s *Service) reconcileInsuranceTx(ctx context.Context, vehicleID uint, subType domain.InsuranceSubType) (*time.Time, error) {
	field, ok := expiryFieldFor(subType)
	if !ok {
		return nil, nil
	}

	records, err := s.repo.ListInsurances(ctx, vehicleID)
	if err != nil {
		return nil, reconciliationFailed(err, "list insurances")
	}

	validity := make([]domain.InsuranceValidity, 0, len(records))
	for _, rec := range records {
		validity = append(validity, domain.InsuranceValidity{ValidUntil: rec.ValidUntil, SubType: rec.SubType})
	}

	latest := domain.LatestInsurance(validity, subType)
	if err := s.repo.SetVehicleExpiry(ctx, vehicleID, field, latest); err != nil {
		return nil, reconciliationFailed(err, "write insurance expiry")
	}
	return latest, nil
}

func expiryFieldFor(subType domain.InsuranceSubType) (ports.ExpiryField, bool) {
	switch subType {
	case domain.SubTypeTraffic:
		return ports.ExpiryTrafficInsurance, true
	case domain.SubTypeComprehensive:
		return ports.ExpiryComprehensiveInsurance, true
	default:
		return "", false
	}
}
