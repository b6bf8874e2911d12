package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	"fleetcheck/internal/ports"
)

type FleetRepository struct {
	db *gorm.DB
}

var _ ports.FleetRepository = (*FleetRepository)(nil)

func NewFleetRepository(db *gorm.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) CreateCompany(ctx context.Context, company ports.Company) (ports.Company, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Company{}, err
	}

	row := model.Company{
		Name:      strings.TrimSpace(company.Name),
		CreatedAt: nowUTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Company{}, errs.Wrap(err, "insert company")
	}
	return ports.Company{ID: row.ID, Name: row.Name}, nil
}

func (r *FleetRepository) ListCompanies(ctx context.Context) ([]ports.Company, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Company
	if err := db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query companies")
	}

	items := make([]ports.Company, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Company{ID: row.ID, Name: row.Name})
	}
	return items, nil
}

func (r *FleetRepository) CreateLocation(ctx context.Context, location ports.Location) (ports.Location, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Location{}, err
	}

	var count int64
	if err := db.Model(&model.Company{}).Where("id = ?", location.CompanyID).Count(&count).Error; err != nil {
		return ports.Location{}, errs.Wrap(err, "check location company")
	}
	if count == 0 {
		return ports.Location{}, ports.ErrCompanyNotFound
	}

	row := model.Location{
		CompanyID:        location.CompanyID,
		Name:             strings.TrimSpace(location.Name),
		ResponsibleEmail: location.ResponsibleEmail,
		CreatedAt:        nowUTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Location{}, errs.Wrap(err, "insert location")
	}
	return mapLocation(row), nil
}

func (r *FleetRepository) GetLocation(ctx context.Context, locationID uint) (ports.Location, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Location{}, err
	}

	var row model.Location
	if err := db.Where("id = ?", locationID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Location{}, ports.ErrLocationNotFound
		}
		return ports.Location{}, errs.Wrap(err, "query location by id")
	}
	return mapLocation(row), nil
}

func (r *FleetRepository) CreateVehicle(ctx context.Context, vehicle ports.Vehicle) (ports.Vehicle, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Vehicle{}, err
	}

	status := vehicle.Status
	if status == "" {
		status = compliance.StatusActive
	}

	now := nowUTC()
	row := model.Vehicle{
		Plate:                        vehicle.Plate,
		CompanyID:                    vehicle.CompanyID,
		LocationID:                   vehicle.LocationID,
		Status:                       string(status),
		InspectionTracked:            vehicle.InspectionTracked,
		InsuranceTracked:             vehicle.InsuranceTracked,
		InspectionExpiry:             utcPtr(vehicle.InspectionExpiry),
		TrafficInsuranceExpiry:       utcPtr(vehicle.TrafficInsuranceExpiry),
		ComprehensiveInsuranceExpiry: utcPtr(vehicle.ComprehensiveInsuranceExpiry),
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Vehicle{}, errs.Wrap(err, "insert vehicle")
	}
	return r.GetVehicle(ctx, row.ID)
}

func (r *FleetRepository) GetVehicle(ctx context.Context, vehicleID uint) (ports.Vehicle, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Vehicle{}, err
	}
	return takeVehicle(db.Where("vehicles.id = ?", vehicleID))
}

func (r *FleetRepository) GetVehicleByPlate(ctx context.Context, plate string) (ports.Vehicle, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Vehicle{}, err
	}
	return takeVehicle(db.Where("vehicles.plate = ?", plate))
}

func takeVehicle(query *gorm.DB) (ports.Vehicle, error) {
	var row model.Vehicle
	if err := query.Preload("Company").Preload("Location").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Vehicle{}, ports.ErrVehicleNotFound
		}
		return ports.Vehicle{}, errs.Wrap(err, "query vehicle")
	}
	return mapVehicle(row), nil
}

func (r *FleetRepository) ListVehicles(ctx context.Context, filter ports.VehicleFilter) ([]ports.Vehicle, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := applyScope(db.Model(&model.Vehicle{}), filter.Scope, "vehicles")
	if len(filter.Statuses) > 0 {
		query = query.Where("vehicles.status IN ?", statusStrings(filter.Statuses))
	}
	if len(filter.ExcludeStatuses) > 0 {
		query = query.Where("vehicles.status NOT IN ?", statusStrings(filter.ExcludeStatuses))
	}

	var rows []model.Vehicle
	if err := query.Preload("Company").Preload("Location").Order("vehicles.plate asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query vehicles")
	}

	items := make([]ports.Vehicle, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapVehicle(row))
	}
	return items, nil
}

func (r *FleetRepository) SetVehicleExpiry(ctx context.Context, vehicleID uint, field ports.ExpiryField, value *time.Time) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	switch field {
	case ports.ExpiryInspection, ports.ExpiryTrafficInsurance, ports.ExpiryComprehensiveInsurance:
	default:
		return errs.Wrapf(errors.New("unknown expiry field"), "set vehicle expiry %q", field)
	}

	var column any
	if value != nil {
		column = value.UTC()
	}

	if err := db.Model(&model.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			string(field): column,
			"updated_at":  nowUTC(),
		}).Error; err != nil {
		return errs.Wrapf(err, "update vehicle %s", field)
	}
	return nil
}

func (r *FleetRepository) SetVehicleStatus(ctx context.Context, vehicleID uint, status compliance.VehicleStatus) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": nowUTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update vehicle status")
	}
	if result.RowsAffected == 0 {
		return ports.ErrVehicleNotFound
	}
	return nil
}

func (r *FleetRepository) ParkActiveVehicles(ctx context.Context, vehicleIDs []uint) (int64, error) {
	if len(vehicleIDs) == 0 {
		return 0, nil
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := db.Model(&model.Vehicle{}).
		Where("id IN ? AND status = ?", vehicleIDs, string(compliance.StatusActive)).
		Updates(map[string]any{
			"status":     string(compliance.StatusParked),
			"updated_at": nowUTC(),
		})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "park active vehicles")
	}
	return result.RowsAffected, nil
}

func (r *FleetRepository) AppendSweepLog(ctx context.Context, entry ports.SweepLogEntry) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowUTC()
	}

	row := model.SweepLog{
		RunID:         entry.RunID,
		JobName:       entry.JobName,
		Status:        entry.Status,
		Message:       entry.Message,
		AffectedCount: entry.AffectedCount,
		CreatedAt:     createdAt.UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert sweep log")
	}
	return nil
}

func (r *FleetRepository) ListSweepLogs(ctx context.Context, jobName string, limit int) ([]ports.SweepLogEntry, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.SweepLog{}).Order("id desc")
	if name := strings.TrimSpace(jobName); name != "" {
		query = query.Where("job_name = ?", name)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.SweepLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query sweep logs")
	}

	items := make([]ports.SweepLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SweepLogEntry{
			ID:            row.ID,
			RunID:         row.RunID,
			JobName:       row.JobName,
			Status:        row.Status,
			Message:       row.Message,
			AffectedCount: row.AffectedCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return items, nil
}

func mapLocation(row model.Location) ports.Location {
	return ports.Location{
		ID:               row.ID,
		CompanyID:        row.CompanyID,
		Name:             row.Name,
		ResponsibleEmail: row.ResponsibleEmail,
	}
}

func mapVehicle(row model.Vehicle) ports.Vehicle {
	v := ports.Vehicle{
		ID:                           row.ID,
		Plate:                        row.Plate,
		CompanyID:                    row.CompanyID,
		LocationID:                   row.LocationID,
		Status:                       compliance.VehicleStatus(row.Status),
		InspectionTracked:            row.InspectionTracked,
		InsuranceTracked:             row.InsuranceTracked,
		InspectionExpiry:             utcPtr(row.InspectionExpiry),
		TrafficInsuranceExpiry:       utcPtr(row.TrafficInsuranceExpiry),
		ComprehensiveInsuranceExpiry: utcPtr(row.ComprehensiveInsuranceExpiry),
		CreatedAt:                    row.CreatedAt,
		UpdatedAt:                    row.UpdatedAt,
	}
	if row.Company != nil {
		v.CompanyName = row.Company.Name
	}
	if row.Location != nil {
		v.LocationName = row.Location.Name
		v.LocationResponsibleEmail = row.Location.ResponsibleEmail
	}
	return v
}
