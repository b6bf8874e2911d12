package ports

import (
	"context"
	"errors"
	"time"

	"fleetcheck/internal/domain/compliance"
)

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrInspectionNotFound = errors.New("inspection record not found")
	ErrInsuranceNotFound  = errors.New("insurance record not found")
	ErrCompanyNotFound    = errors.New("company not found")
	ErrLocationNotFound   = errors.New("location not found")
)

// ExpiryField names one of the denormalized expiry columns on a vehicle.
type ExpiryField string

const (
	ExpiryInspection             ExpiryField = "inspection_expiry"
	ExpiryTrafficInsurance       ExpiryField = "traffic_insurance_expiry"
	ExpiryComprehensiveInsurance ExpiryField = "comprehensive_insurance_expiry"
)

type Company struct {
	ID   uint
	Name string
}

type Location struct {
	ID               uint
	CompanyID        uint
	Name             string
	ResponsibleEmail *string
}

type Vehicle struct {
	ID                           uint
	Plate                        string
	CompanyID                    *uint
	LocationID                   *uint
	CompanyName                  string
	LocationName                 string
	LocationResponsibleEmail     *string
	Status                       compliance.VehicleStatus
	InspectionTracked            bool
	InsuranceTracked             bool
	InspectionExpiry             *time.Time
	TrafficInsuranceExpiry       *time.Time
	ComprehensiveInsuranceExpiry *time.Time
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

type VehicleFilter struct {
	Scope           compliance.Scope
	Statuses        []compliance.VehicleStatus
	ExcludeStatuses []compliance.VehicleStatus
}

type Inspection struct {
	ID            uint
	VehicleID     uint
	InspectedAt   time.Time
	ValidUntil    time.Time
	Outcome       compliance.InspectionOutcome
	Kind          compliance.InspectionKind
	Station       string
	StationRegion string
	ReportNo      string
	Fee           *float64
	FailureReason string
	FailureDetail string
	Notes         string
	CreatedBy     *uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Insurance struct {
	ID               uint
	VehicleID        uint
	SubType          compliance.InsuranceSubType
	PolicyNo         string
	Insurer          string
	AgencyName       string
	AgencyPhone      string
	StartsAt         time.Time
	ValidUntil       time.Time
	Premium          *float64
	PaymentStatus    compliance.PaymentStatus
	PaymentPlan      string
	InstallmentCount *int
	PaidAt           *time.Time
	Coverage         string
	Notes            string
	CreatedBy        *uint
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InsuranceDueFilter selects insurance records by validity for vehicles
// that track insurance.
type InsuranceDueFilter struct {
	Scope            compliance.Scope
	ExcludeStatuses  []compliance.VehicleStatus
	ValidUntilBefore time.Time
}

// InsuranceDue is an insurance record joined with its vehicle.
type InsuranceDue struct {
	Insurance Insurance
	Vehicle   Vehicle
}

type SweepLogEntry struct {
	ID            uint
	RunID         string
	JobName       string
	Status        string
	Message       string
	AffectedCount int
	CreatedAt     time.Time
}

type FleetRepository interface {
	CreateCompany(ctx context.Context, company Company) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	CreateLocation(ctx context.Context, location Location) (Location, error)
	GetLocation(ctx context.Context, locationID uint) (Location, error)

	CreateVehicle(ctx context.Context, vehicle Vehicle) (Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID uint) (Vehicle, error)
	GetVehicleByPlate(ctx context.Context, plate string) (Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]Vehicle, error)
	SetVehicleExpiry(ctx context.Context, vehicleID uint, field ExpiryField, value *time.Time) error
	SetVehicleStatus(ctx context.Context, vehicleID uint, status compliance.VehicleStatus) error
	// ParkActiveVehicles moves the given vehicles to parked in one statement,
	// touching only rows that are still active.
	ParkActiveVehicles(ctx context.Context, vehicleIDs []uint) (int64, error)

	CreateInspection(ctx context.Context, record Inspection) (Inspection, error)
	GetInspection(ctx context.Context, recordID uint) (Inspection, error)
	UpdateInspection(ctx context.Context, record Inspection) (Inspection, error)
	DeleteInspection(ctx context.Context, recordID uint) error
	ListInspections(ctx context.Context, vehicleID uint) ([]Inspection, error)

	CreateInsurance(ctx context.Context, record Insurance) (Insurance, error)
	GetInsurance(ctx context.Context, recordID uint) (Insurance, error)
	UpdateInsurance(ctx context.Context, record Insurance) (Insurance, error)
	DeleteInsurance(ctx context.Context, recordID uint) error
	ListInsurances(ctx context.Context, vehicleID uint) ([]Insurance, error)
	ListInsurancesDue(ctx context.Context, filter InsuranceDueFilter) ([]InsuranceDue, error)

	AppendSweepLog(ctx context.Context, entry SweepLogEntry) error
	ListSweepLogs(ctx context.Context, jobName string, limit int) ([]SweepLogEntry, error)
}
