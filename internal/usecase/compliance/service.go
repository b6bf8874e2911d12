package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
)

// Service owns the record lifecycle, expiry reconciliation and the
// on-demand alarm views.
type Service struct {
	repo  ports.FleetRepository
	users ports.UserDirectory
	uow   ports.UnitOfWork
	now   func() time.Time
}

func NewService(repo ports.FleetRepository, users ports.UserDirectory, uow ports.UnitOfWork) *Service {
	return &Service{
		repo:  repo,
		users: users,
		uow:   uow,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("fleet repository is required")
	}
	if s.uow == nil {
		return errors.New("fleet unit of work is required")
	}
	return nil
}

// resolveVehicle finds a vehicle by id, falling back to plate.
func (s *Service) resolveVehicle(ctx context.Context, vehicleID uint, plate string) (ports.Vehicle, error) {
	var (
		v   ports.Vehicle
		err error
	)
	switch {
	case vehicleID != 0:
		v, err = s.repo.GetVehicle(ctx, vehicleID)
	case domain.NormalizePlate(plate) != "":
		v, err = s.repo.GetVehicleByPlate(ctx, domain.NormalizePlate(plate))
	default:
		return ports.Vehicle{}, invalid("vehicle is required")
	}
	if err != nil {
		return ports.Vehicle{}, notFound(err)
	}
	return v, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrValidation}, args...)...)
}

// notFound tags repository not-found sentinels with the domain error.
func notFound(err error) error {
	switch {
	case errors.Is(err, ports.ErrVehicleNotFound),
		errors.Is(err, ports.ErrInspectionNotFound),
		errors.Is(err, ports.ErrInsuranceNotFound),
		errors.Is(err, ports.ErrCompanyNotFound),
		errors.Is(err, ports.ErrLocationNotFound),
		errors.Is(err, ports.ErrUserNotFound):
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	default:
		return err
	}
}

func reconciliationFailed(err error, scope string) error {
	if err == nil || errors.Is(err, domain.ErrReconciliation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrReconciliation, scope, err)
}
