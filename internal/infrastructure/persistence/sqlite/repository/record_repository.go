package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	"fleetcheck/internal/ports"
)

func (r *FleetRepository) CreateInspection(ctx context.Context, record ports.Inspection) (ports.Inspection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Inspection{}, err
	}

	now := nowUTC()
	row := inspectionRow(record)
	row.ID = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := db.Create(&row).Error; err != nil {
		return ports.Inspection{}, errs.Wrap(err, "insert inspection")
	}
	return mapInspection(row), nil
}

func (r *FleetRepository) GetInspection(ctx context.Context, recordID uint) (ports.Inspection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Inspection{}, err
	}

	var row model.Inspection
	if err := db.Where("id = ?", recordID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Inspection{}, ports.ErrInspectionNotFound
		}
		return ports.Inspection{}, errs.Wrap(err, "query inspection by id")
	}
	return mapInspection(row), nil
}

func (r *FleetRepository) UpdateInspection(ctx context.Context, record ports.Inspection) (ports.Inspection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Inspection{}, err
	}

	row := inspectionRow(record)
	row.UpdatedAt = nowUTC()
	result := db.Model(&model.Inspection{}).Where("id = ?", record.ID).Select("*").Omit("id", "created_at").Updates(&row)
	if result.Error != nil {
		return ports.Inspection{}, errs.Wrap(result.Error, "update inspection")
	}
	if result.RowsAffected == 0 {
		return ports.Inspection{}, ports.ErrInspectionNotFound
	}
	return r.GetInspection(ctx, record.ID)
}

func (r *FleetRepository) DeleteInspection(ctx context.Context, recordID uint) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", recordID).Delete(&model.Inspection{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete inspection")
	}
	if result.RowsAffected == 0 {
		return ports.ErrInspectionNotFound
	}
	return nil
}

func (r *FleetRepository) ListInspections(ctx context.Context, vehicleID uint) ([]ports.Inspection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Inspection
	if err := db.Where("vehicle_id = ?", vehicleID).Order("inspected_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query inspections")
	}

	items := make([]ports.Inspection, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapInspection(row))
	}
	return items, nil
}

func (r *FleetRepository) CreateInsurance(ctx context.Context, record ports.Insurance) (ports.Insurance, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Insurance{}, err
	}

	now := nowUTC()
	row := insuranceRow(record)
	row.ID = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := db.Create(&row).Error; err != nil {
		return ports.Insurance{}, errs.Wrap(err, "insert insurance")
	}
	return mapInsurance(row), nil
}

func (r *FleetRepository) GetInsurance(ctx context.Context, recordID uint) (ports.Insurance, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Insurance{}, err
	}

	var row model.Insurance
	if err := db.Where("id = ?", recordID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Insurance{}, ports.ErrInsuranceNotFound
		}
		return ports.Insurance{}, errs.Wrap(err, "query insurance by id")
	}
	return mapInsurance(row), nil
}

func (r *FleetRepository) UpdateInsurance(ctx context.Context, record ports.Insurance) (ports.Insurance, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Insurance{}, err
	}

	row := insuranceRow(record)
	row.UpdatedAt = nowUTC()
	result := db.Model(&model.Insurance{}).Where("id = ?", record.ID).Select("*").Omit("id", "created_at").Updates(&row)
	if result.Error != nil {
		return ports.Insurance{}, errs.Wrap(result.Error, "update insurance")
	}
	if result.RowsAffected == 0 {
		return ports.Insurance{}, ports.ErrInsuranceNotFound
	}
	return r.GetInsurance(ctx, record.ID)
}

func (r *FleetRepository) DeleteInsurance(ctx context.Context, recordID uint) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", recordID).Delete(&model.Insurance{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete insurance")
	}
	if result.RowsAffected == 0 {
		return ports.ErrInsuranceNotFound
	}
	return nil
}

func (r *FleetRepository) ListInsurances(ctx context.Context, vehicleID uint) ([]ports.Insurance, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Insurance
	if err := db.Where("vehicle_id = ?", vehicleID).Order("valid_until desc, id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query insurances")
	}

	items := make([]ports.Insurance, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapInsurance(row))
	}
	return items, nil
}

func (r *FleetRepository) ListInsurancesDue(ctx context.Context, filter ports.InsuranceDueFilter) ([]ports.InsuranceDue, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Insurance{}).
		Joins("JOIN vehicles ON vehicles.id = insurances.vehicle_id").
		Where("vehicles.insurance_tracked = ?", true).
		Where("insurances.valid_until <= ?", filter.ValidUntilBefore.UTC())
	if len(filter.ExcludeStatuses) > 0 {
		query = query.Where("vehicles.status NOT IN ?", statusStrings(filter.ExcludeStatuses))
	}
	query = applyScope(query, filter.Scope, "vehicles")

	var rows []model.Insurance
	if err := query.
		Preload("Vehicle.Company").
		Preload("Vehicle.Location").
		Order("insurances.valid_until asc, insurances.id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query due insurances")
	}

	items := make([]ports.InsuranceDue, 0, len(rows))
	for _, row := range rows {
		item := ports.InsuranceDue{Insurance: mapInsurance(row)}
		if row.Vehicle != nil {
			item.Vehicle = mapVehicle(*row.Vehicle)
		}
		items = append(items, item)
	}
	return items, nil
}

func inspectionRow(record ports.Inspection) model.Inspection {
	return model.Inspection{
		ID:            record.ID,
		VehicleID:     record.VehicleID,
		InspectedAt:   record.InspectedAt.UTC(),
		ValidUntil:    record.ValidUntil.UTC(),
		Outcome:       string(record.Outcome),
		Kind:          string(record.Kind),
		Station:       record.Station,
		StationRegion: record.StationRegion,
		ReportNo:      record.ReportNo,
		Fee:           record.Fee,
		FailureReason: record.FailureReason,
		FailureDetail: record.FailureDetail,
		Notes:         record.Notes,
		CreatedBy:     record.CreatedBy,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func mapInspection(row model.Inspection) ports.Inspection {
	return ports.Inspection{
		ID:            row.ID,
		VehicleID:     row.VehicleID,
		InspectedAt:   row.InspectedAt.UTC(),
		ValidUntil:    row.ValidUntil.UTC(),
		Outcome:       compliance.InspectionOutcome(row.Outcome),
		Kind:          compliance.InspectionKind(row.Kind),
		Station:       row.Station,
		StationRegion: row.StationRegion,
		ReportNo:      row.ReportNo,
		Fee:           row.Fee,
		FailureReason: row.FailureReason,
		FailureDetail: row.FailureDetail,
		Notes:         row.Notes,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func insuranceRow(record ports.Insurance) model.Insurance {
	return model.Insurance{
		ID:               record.ID,
		VehicleID:        record.VehicleID,
		SubType:          string(record.SubType),
		PolicyNo:         record.PolicyNo,
		Insurer:          record.Insurer,
		AgencyName:       record.AgencyName,
		AgencyPhone:      record.AgencyPhone,
		StartsAt:         record.StartsAt.UTC(),
		ValidUntil:       record.ValidUntil.UTC(),
		Premium:          record.Premium,
		PaymentStatus:    string(record.PaymentStatus),
		PaymentPlan:      record.PaymentPlan,
		InstallmentCount: record.InstallmentCount,
		PaidAt:           utcPtr(record.PaidAt),
		Coverage:         record.Coverage,
		Notes:            record.Notes,
		CreatedBy:        record.CreatedBy,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func mapInsurance(row model.Insurance) ports.Insurance {
	return ports.Insurance{
		ID:               row.ID,
		VehicleID:        row.VehicleID,
		SubType:          compliance.InsuranceSubType(row.SubType),
		PolicyNo:         row.PolicyNo,
		Insurer:          row.Insurer,
		AgencyName:       row.AgencyName,
		AgencyPhone:      row.AgencyPhone,
		StartsAt:         row.StartsAt.UTC(),
		ValidUntil:       row.ValidUntil.UTC(),
		Premium:          row.Premium,
		PaymentStatus:    compliance.PaymentStatus(row.PaymentStatus),
		PaymentPlan:      row.PaymentPlan,
		InstallmentCount: row.InstallmentCount,
		PaidAt:           utcPtr(row.PaidAt),
		Coverage:         row.Coverage,
		Notes:            row.Notes,
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
