package compliance

import (
	"context"
	"net/mail"
	"strings"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

type RegisterVehicleInput struct {
	Plate             string
	CompanyID         *uint
	LocationID        *uint
	Status            string
	InspectionTracked bool
	InsuranceTracked  bool
}

type RegisterUserInput struct {
	Email      string
	Name       string
	Role       string
	CompanyID  *uint
	LocationID *uint
}

func (s *Service) RegisterCompany(ctx context.Context, name string) (ports.Company, error) {
	if err := s.ready(ctx); err != nil {
		return ports.Company{}, err
	}
	if strings.TrimSpace(name) == "" {
		return ports.Company{}, invalid("company name is required")
	}
	return s.repo.CreateCompany(ctx, ports.Company{Name: name})
}

func (s *Service) RegisterLocation(ctx context.Context, companyID uint, name string, responsibleEmail string) (ports.Location, error) {
	if err := s.ready(ctx); err != nil {
		return ports.Location{}, err
	}
	if strings.TrimSpace(name) == "" {
		return ports.Location{}, invalid("location name is required")
	}

	var email *string
	if trimmed := strings.TrimSpace(responsibleEmail); trimmed != "" {
		if _, err := mail.ParseAddress(trimmed); err != nil {
			return ports.Location{}, invalid("responsible email %q is malformed", trimmed)
		}
		email = &trimmed
	}

	loc, err := s.repo.CreateLocation(ctx, ports.Location{CompanyID: companyID, Name: name, ResponsibleEmail: email})
	if err != nil {
		return ports.Location{}, notFound(err)
	}
	return loc, nil
}

// RegisterVehicle adds a vehicle. Its expiry fields start empty and are
// filled by recording inspections and policies.
func (s *Service) RegisterVehicle(ctx context.Context, input RegisterVehicleInput) (ports.Vehicle, error) {
	if err := s.ready(ctx); err != nil {
		return ports.Vehicle{}, err
	}

	plate := domain.NormalizePlate(input.Plate)
	if plate == "" {
		return ports.Vehicle{}, invalid("plate is required")
	}

	status := domain.StatusActive
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := domain.ParseVehicleStatus(input.Status)
		if err != nil {
			return ports.Vehicle{}, err
		}
		status = parsed
	}

	var created ports.Vehicle
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.LocationID != nil {
			loc, err := s.repo.GetLocation(txCtx, *input.LocationID)
			if err != nil {
				return notFound(err)
			}
			if input.CompanyID != nil && *input.CompanyID != loc.CompanyID {
				return invalid("location %d does not belong to company %d", loc.ID, *input.CompanyID)
			}
			if input.CompanyID == nil {
				companyID := loc.CompanyID
				input.CompanyID = &companyID
			}
		}

		var err error
		created, err = s.repo.CreateVehicle(txCtx, ports.Vehicle{
			Plate:             plate,
			CompanyID:         input.CompanyID,
			LocationID:        input.LocationID,
			Status:            status,
			InspectionTracked: input.InspectionTracked,
			InsuranceTracked:  input.InsuranceTracked,
		})
		return err
	}); err != nil {
		return ports.Vehicle{}, err
	}
	return created, nil
}

func (s *Service) RegisterUser(ctx context.Context, input RegisterUserInput) (ports.User, error) {
	if err := s.ready(ctx); err != nil {
		return ports.User{}, err
	}
	if s.users == nil {
		return ports.User{}, invalid("user directory is not configured")
	}

	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return ports.User{}, invalid("email %q is malformed", input.Email)
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return ports.User{}, err
	}
	if role == domain.RoleCompanyManager && input.CompanyID == nil {
		return ports.User{}, invalid("company manager requires a company")
	}
	if role == domain.RoleLocationChief && input.LocationID == nil {
		return ports.User{}, invalid("location chief requires a location")
	}

	return s.users.CreateUser(ctx, ports.User{
		Email:      email,
		Name:       input.Name,
		Role:       role,
		CompanyID:  input.CompanyID,
		LocationID: input.LocationID,
		Active:     true,
	})
}

// ScopeForEmail resolves the fleet scope of a back-office user.
func (s *Service) ScopeForEmail(ctx context.Context, email string) (domain.Scope, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Scope{}, err
	}
	if s.users == nil {
		return domain.Scope{}, invalid("user directory is not configured")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Scope{}, notFound(err)
	}
	if !user.Active {
		return domain.Scope{Deny: true}, nil
	}
	return domain.ScopeForUser(domain.Principal{
		Role:       user.Role,
		CompanyID:  user.CompanyID,
		LocationID: user.LocationID,
	}), nil
}

// ChangeVehicleStatus moves a vehicle through the status machine.
func (s *Service) ChangeVehicleStatus(ctx context.Context, plate string, target string) (domain.Transition, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Transition{}, err
	}

	status, err := domain.ParseVehicleStatus(target)
	if err != nil {
		return domain.Transition{}, err
	}
	event, err := domain.EventForTarget(status)
	if err != nil {
		return domain.Transition{}, err
	}

	var out domain.Transition
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vehicle, err := s.resolveVehicle(txCtx, 0, plate)
		if err != nil {
			return err
		}

		out, err = domain.NewStatusMachine(vehicle.Status).Fire(txCtx, event)
		if err != nil {
			return err
		}
		return s.repo.SetVehicleStatus(txCtx, vehicle.ID, out.To)
	}); err != nil {
		return domain.Transition{}, err
	}
	return out, nil
}
