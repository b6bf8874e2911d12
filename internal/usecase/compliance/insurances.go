package compliance

import (
	"context"
	"strings"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

type CreateInsuranceInput struct {
	VehicleID        uint
	Plate            string
	SubType          string
	PolicyNo         string
	Insurer          string
	AgencyName       string
	AgencyPhone      string
	StartsAt         *time.Time
	ValidUntil       *time.Time
	Premium          *float64
	PaymentStatus    string
	PaymentPlan      string
	InstallmentCount *int
	PaidAt           *time.Time
	Coverage         string
	Notes            string
	CreatedBy        *uint
}

// UpdateInsuranceInput carries a partial update. Nil fields are kept.
type UpdateInsuranceInput struct {
	ID               uint
	VehicleID        *uint
	SubType          *string
	PolicyNo         *string
	Insurer          *string
	AgencyName       *string
	AgencyPhone      *string
	StartsAt         *time.Time
	ValidUntil       *time.Time
	Premium          *float64
	PaymentStatus    *string
	PaymentPlan      *string
	InstallmentCount *int
	PaidAt           *time.Time
	Coverage         *string
	Notes            *string
}

type InsuranceResult struct {
	Record ports.Insurance
	// VehicleExpiry is the expiry field fed by the record's sub-type, nil
	// for sub-types that feed no field.
	VehicleExpiry *time.Time
}

// CreateInsurance stores a policy and reconciles the matching expiry field.
func (s *Service) CreateInsurance(ctx context.Context, input CreateInsuranceInput) (InsuranceResult, error) {
	if err := s.ready(ctx); err != nil {
		return InsuranceResult{}, err
	}
	if input.VehicleID == 0 && strings.TrimSpace(input.Plate) == "" {
		return InsuranceResult{}, invalid("vehicle is required")
	}
	if strings.TrimSpace(input.SubType) == "" {
		return InsuranceResult{}, invalid("insurance sub-type is required")
	}
	subType, err := domain.ParseInsuranceSubType(input.SubType)
	if err != nil {
		return InsuranceResult{}, err
	}
	if input.StartsAt == nil {
		return InsuranceResult{}, invalid("start date is required")
	}
	if input.ValidUntil == nil {
		return InsuranceResult{}, invalid("end date is required")
	}
	if input.ValidUntil.Before(*input.StartsAt) {
		return InsuranceResult{}, invalid("end date is before the start date")
	}
	payment, err := domain.ParsePaymentStatus(input.PaymentStatus)
	if err != nil {
		return InsuranceResult{}, err
	}

	var out InsuranceResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vehicle, err := s.resolveVehicle(txCtx, input.VehicleID, input.Plate)
		if err != nil {
			return err
		}

		created, err := s.repo.CreateInsurance(txCtx, ports.Insurance{
			VehicleID:        vehicle.ID,
			SubType:          subType,
			PolicyNo:         strings.TrimSpace(input.PolicyNo),
			Insurer:          strings.TrimSpace(input.Insurer),
			AgencyName:       strings.TrimSpace(input.AgencyName),
			AgencyPhone:      strings.TrimSpace(input.AgencyPhone),
			StartsAt:         *input.StartsAt,
			ValidUntil:       *input.ValidUntil,
			Premium:          input.Premium,
			PaymentStatus:    payment,
			PaymentPlan:      strings.TrimSpace(input.PaymentPlan),
			InstallmentCount: input.InstallmentCount,
			PaidAt:           input.PaidAt,
			Coverage:         strings.TrimSpace(input.Coverage),
			Notes:            strings.TrimSpace(input.Notes),
			CreatedBy:        input.CreatedBy,
		})
		if err != nil {
			return err
		}

		expiry, err := s.reconcileInsuranceTx(txCtx, vehicle.ID, subType)
		if err != nil {
			return err
		}
		out = InsuranceResult{Record: created, VehicleExpiry: expiry}
		return nil
	}); err != nil {
		return InsuranceResult{}, err
	}
	return out, nil
}

// UpdateInsurance applies a partial update and reconciles both the old and
// the new (vehicle, sub-type) scope when either moved.
func (s *Service) UpdateInsurance(ctx context.Context, input UpdateInsuranceInput) (InsuranceResult, error) {
	if err := s.ready(ctx); err != nil {
		return InsuranceResult{}, err
	}
	if input.ID == 0 {
		return InsuranceResult{}, invalid("insurance id is required")
	}

	var out InsuranceResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetInsurance(txCtx, input.ID)
		if err != nil {
			return notFound(err)
		}

		next, err := applyInsurancePatch(current, input)
		if err != nil {
			return err
		}
		if next.VehicleID != current.VehicleID {
			if _, err := s.resolveVehicle(txCtx, next.VehicleID, ""); err != nil {
				return err
			}
		}

		updated, err := s.repo.UpdateInsurance(txCtx, next)
		if err != nil {
			return notFound(err)
		}

		scopeMoved := current.VehicleID != updated.VehicleID || current.SubType != updated.SubType
		affectsExpiry := scopeMoved || !current.ValidUntil.Equal(updated.ValidUntil)
		if scopeMoved {
			if _, err := s.reconcileInsuranceTx(txCtx, current.VehicleID, current.SubType); err != nil {
				return err
			}
		}

		var expiry *time.Time
		if affectsExpiry {
			expiry, err = s.reconcileInsuranceTx(txCtx, updated.VehicleID, updated.SubType)
			if err != nil {
				return err
			}
		} else {
			vehicle, err := s.repo.GetVehicle(txCtx, updated.VehicleID)
			if err != nil {
				return notFound(err)
			}
			expiry = insuranceExpiryOf(vehicle, updated.SubType)
		}

		out = InsuranceResult{Record: updated, VehicleExpiry: expiry}
		return nil
	}); err != nil {
		return InsuranceResult{}, err
	}
	return out, nil
}

// DeleteInsurance removes a policy and reconciles its orphaned scope.
func (s *Service) DeleteInsurance(ctx context.Context, recordID uint) (DeleteResult, error) {
	if err := s.ready(ctx); err != nil {
		return DeleteResult{}, err
	}
	if recordID == 0 {
		return DeleteResult{}, invalid("insurance id is required")
	}

	var out DeleteResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetInsurance(txCtx, recordID)
		if err != nil {
			return notFound(err)
		}
		if err := s.repo.DeleteInsurance(txCtx, recordID); err != nil {
			return notFound(err)
		}

		expiry, err := s.reconcileInsuranceTx(txCtx, current.VehicleID, current.SubType)
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

// ListInsurances returns a vehicle's policies, latest validity first.
func (s *Service) ListInsurances(ctx context.Context, plate string) ([]ports.Insurance, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	vehicle, err := s.resolveVehicle(ctx, 0, plate)
	if err != nil {
		return nil, err
	}
	return s.repo.ListInsurances(ctx, vehicle.ID)
}

func insuranceExpiryOf(v ports.Vehicle, subType domain.InsuranceSubType) *time.Time {
	switch subType {
	case domain.SubTypeTraffic:
		return v.TrafficInsuranceExpiry
	case domain.SubTypeComprehensive:
		return v.ComprehensiveInsuranceExpiry
	default:
		return nil
	}
}

func applyInsurancePatch(current ports.Insurance, input UpdateInsuranceInput) (ports.Insurance, error) {
	next := current
	if input.VehicleID != nil {
		if *input.VehicleID == 0 {
			return ports.Insurance{}, invalid("vehicle is required")
		}
		next.VehicleID = *input.VehicleID
	}
	if input.SubType != nil {
		subType, err := domain.ParseInsuranceSubType(*input.SubType)
		if err != nil {
			return ports.Insurance{}, err
		}
		next.SubType = subType
	}
	if input.PaymentStatus != nil {
		payment, err := domain.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return ports.Insurance{}, err
		}
		next.PaymentStatus = payment
	}
	if input.StartsAt != nil {
		next.StartsAt = *input.StartsAt
	}
	if input.ValidUntil != nil {
		next.ValidUntil = *input.ValidUntil
	}
	if input.Premium != nil {
		premium := *input.Premium
		next.Premium = &premium
	}
	if input.InstallmentCount != nil {
		count := *input.InstallmentCount
		next.InstallmentCount = &count
	}
	if input.PaidAt != nil {
		paidAt := *input.PaidAt
		next.PaidAt = &paidAt
	}
	setTrimmed(&next.PolicyNo, input.PolicyNo)
	setTrimmed(&next.Insurer, input.Insurer)
	setTrimmed(&next.AgencyName, input.AgencyName)
	setTrimmed(&next.AgencyPhone, input.AgencyPhone)
	setTrimmed(&next.PaymentPlan, input.PaymentPlan)
	setTrimmed(&next.Coverage, input.Coverage)
	setTrimmed(&next.Notes, input.Notes)

	if next.ValidUntil.Before(next.StartsAt) {
		return ports.Insurance{}, invalid("end date is before the start date")
	}
	return next, nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
