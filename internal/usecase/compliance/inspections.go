package compliance

import (
	"context"
	"strings"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

type CreateInspectionInput struct {
	VehicleID     uint
	Plate         string
	InspectedAt   *time.Time
	ValidUntil    *time.Time
	Outcome       string
	Kind          string
	Station       string
	StationRegion string
	ReportNo      string
	Fee           *float64
	FailureReason string
	FailureDetail string
	Notes         string
	CreatedBy     *uint
}

// UpdateInspectionInput carries a partial update. Nil fields are kept.
type UpdateInspectionInput struct {
	ID            uint
	VehicleID     *uint
	InspectedAt   *time.Time
	ValidUntil    *time.Time
	Outcome       *string
	Kind          *string
	Station       *string
	StationRegion *string
	ReportNo      *string
	Fee           *float64
	FailureReason *string
	FailureDetail *string
	Notes         *string
}

type InspectionResult struct {
	Record ports.Inspection
	// VehicleExpiry is the vehicle's inspectionExpiry after reconciliation.
	VehicleExpiry *time.Time
}

type DeleteResult struct {
	VehicleID     uint
	VehicleExpiry *time.Time
}

// CreateInspection stores an inspection and reconciles the vehicle's
// inspection expiry in the same transaction.
func (s *Service) CreateInspection(ctx context.Context, input CreateInspectionInput) (InspectionResult, error) {
	if err := s.ready(ctx); err != nil {
		return InspectionResult{}, err
	}
	if input.VehicleID == 0 && strings.TrimSpace(input.Plate) == "" {
		return InspectionResult{}, invalid("vehicle is required")
	}
	if input.InspectedAt == nil {
		return InspectionResult{}, invalid("inspection date is required")
	}
	if input.ValidUntil == nil {
		return InspectionResult{}, invalid("validity date is required")
	}
	if strings.TrimSpace(input.Outcome) == "" {
		return InspectionResult{}, invalid("inspection outcome is required")
	}
	outcome, err := domain.ParseInspectionOutcome(input.Outcome)
	if err != nil {
		return InspectionResult{}, err
	}
	kind, err := domain.ParseInspectionKind(input.Kind)
	if err != nil {
		return InspectionResult{}, err
	}
	if input.ValidUntil.Before(*input.InspectedAt) {
		return InspectionResult{}, invalid("validity date is before the inspection date")
	}

	var out InspectionResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vehicle, err := s.resolveVehicle(txCtx, input.VehicleID, input.Plate)
		if err != nil {
			return err
		}

		created, err := s.repo.CreateInspection(txCtx, ports.Inspection{
			VehicleID:     vehicle.ID,
			InspectedAt:   *input.InspectedAt,
			ValidUntil:    *input.ValidUntil,
			Outcome:       outcome,
			Kind:          kind,
			Station:       strings.TrimSpace(input.Station),
			StationRegion: strings.TrimSpace(input.StationRegion),
			ReportNo:      strings.TrimSpace(input.ReportNo),
			Fee:           input.Fee,
			FailureReason: strings.TrimSpace(input.FailureReason),
			FailureDetail: strings.TrimSpace(input.FailureDetail),
			Notes:         strings.TrimSpace(input.Notes),
			CreatedBy:     input.CreatedBy,
		})
		if err != nil {
			return err
		}

		expiry, err := s.reconcileInspectionTx(txCtx, vehicle.ID)
		if err != nil {
			return err
		}
		out = InspectionResult{Record: created, VehicleExpiry: expiry}
		return nil
	}); err != nil {
		return InspectionResult{}, err
	}
	return out, nil
}

// UpdateInspection applies a partial update. When a field that drives the
// expiry changes, both the old and the new vehicle are reconciled.
func (s *Service) UpdateInspection(ctx context.Context, input UpdateInspectionInput) (InspectionResult, error) {
	if err := s.ready(ctx); err != nil {
		return InspectionResult{}, err
	}
	if input.ID == 0 {
		return InspectionResult{}, invalid("inspection id is required")
	}

	var out InspectionResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetInspection(txCtx, input.ID)
		if err != nil {
			return notFound(err)
		}

		next, err := applyInspectionPatch(current, input)
		if err != nil {
			return err
		}
		if next.VehicleID != current.VehicleID {
			if _, err := s.resolveVehicle(txCtx, next.VehicleID, ""); err != nil {
				return err
			}
		}

		updated, err := s.repo.UpdateInspection(txCtx, next)
		if err != nil {
			return notFound(err)
		}

		affectsExpiry := current.VehicleID != updated.VehicleID ||
			current.Outcome != updated.Outcome ||
			!current.ValidUntil.Equal(updated.ValidUntil)
		if affectsExpiry && current.VehicleID != updated.VehicleID {
			if _, err := s.reconcileInspectionTx(txCtx, current.VehicleID); err != nil {
				return err
			}
		}

		var expiry *time.Time
		if affectsExpiry {
			expiry, err = s.reconcileInspectionTx(txCtx, updated.VehicleID)
			if err != nil {
				return err
			}
		} else {
			vehicle, err := s.repo.GetVehicle(txCtx, updated.VehicleID)
			if err != nil {
				return notFound(err)
			}
			expiry = vehicle.InspectionExpiry
		}

		out = InspectionResult{Record: updated, VehicleExpiry: expiry}
		return nil
	}); err != nil {
		return InspectionResult{}, err
	}
	return out, nil
}

// DeleteInspection removes a record and falls the vehicle back to the next
// latest passed inspection, or to no data.
func (s *Service) DeleteInspection(ctx context.Context, recordID uint) (DeleteResult, error) {
	if err := s.ready(ctx); err != nil {
		return DeleteResult{}, err
	}
	if recordID == 0 {
		return DeleteResult{}, invalid("inspection id is required")
	}

	var out DeleteResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetInspection(txCtx, recordID)
		if err != nil {
			return notFound(err)
		}
		if err := s.repo.DeleteInspection(txCtx, recordID); err != nil {
			return notFound(err)
		}

		expiry, err := s.reconcileInspectionTx(txCtx, current.VehicleID)
		if err != nil {
			return err
		}
		out = DeleteResult{VehicleID: current.VehicleID, VehicleExpiry: expiry}
		return nil
	}); err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

// ListInspections returns a vehicle's inspection history, newest first.
func (s *Service) ListInspections(ctx context.Context, plate string) ([]ports.Inspection, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	vehicle, err := s.resolveVehicle(ctx, 0, plate)
	if err != nil {
		return nil, err
	}
	return s.repo.ListInspections(ctx, vehicle.ID)
}

func applyInspectionPatch(current ports.Inspection, input UpdateInspectionInput) (ports.Inspection, error) {
	next := current
	if input.VehicleID != nil {
		if *input.VehicleID == 0 {
			return ports.Inspection{}, invalid("vehicle is required")
		}
		next.VehicleID = *input.VehicleID
	}
	if input.InspectedAt != nil {
		next.InspectedAt = *input.InspectedAt
	}
	if input.ValidUntil != nil {
		next.ValidUntil = *input.ValidUntil
	}
	if input.Outcome != nil {
		outcome, err := domain.ParseInspectionOutcome(*input.Outcome)
		if err != nil {
			return ports.Inspection{}, err
		}
		next.Outcome = outcome
	}
	if input.Kind != nil {
		kind, err := domain.ParseInspectionKind(*input.Kind)
		if err != nil {
			return ports.Inspection{}, err
		}
		next.Kind = kind
	}
	if input.Station != nil {
		next.Station = strings.TrimSpace(*input.Station)
	}
	if input.StationRegion != nil {
		next.StationRegion = strings.TrimSpace(*input.StationRegion)
	}
	if input.ReportNo != nil {
		next.ReportNo = strings.TrimSpace(*input.ReportNo)
	}
	if input.Fee != nil {
		fee := *input.Fee
		next.Fee = &fee
	}
	if input.FailureReason != nil {
		next.FailureReason = strings.TrimSpace(*input.FailureReason)
	}
	if input.FailureDetail != nil {
		next.FailureDetail = strings.TrimSpace(*input.FailureDetail)
	}
	if input.Notes != nil {
		next.Notes = strings.TrimSpace(*input.Notes)
	}

	if next.ValidUntil.Before(next.InspectedAt) {
		return ports.Inspection{}, invalid("validity date is before the inspection date")
	}
	return next, nil
}
