package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	"fleetcheck/internal/ports"
)

func setupFleetRepository(t *testing.T) (*FleetRepository, *UserRepository) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fleet.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewFleetRepository(db), NewUserRepository(db)
}

func seedVehicle(t *testing.T, repo *FleetRepository, plate string, locationID *uint, status compliance.VehicleStatus) ports.Vehicle {
	t.Helper()

	v, err := repo.CreateVehicle(context.Background(), ports.Vehicle{
		Plate:             plate,
		LocationID:        locationID,
		Status:            status,
		InspectionTracked: true,
		InsuranceTracked:  true,
	})
	if err != nil {
		t.Fatalf("create vehicle %s: %v", plate, err)
	}
	return v
}

func TestCreateVehicleLoadsLocation(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()

	company, err := repo.CreateCompany(ctx, ports.Company{Name: "Anadolu Lojistik"})
	if err != nil {
		t.Fatalf("CreateCompany() error = %v", err)
	}
	email := "depot@fleet.test"
	location, err := repo.CreateLocation(ctx, ports.Location{CompanyID: company.ID, Name: "Depot", ResponsibleEmail: &email})
	if err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	created, err := repo.CreateVehicle(ctx, ports.Vehicle{
		Plate:      "34ABC123",
		CompanyID:  &company.ID,
		LocationID: &location.ID,
	})
	if err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	if created.Status != compliance.StatusActive {
		t.Fatalf("CreateVehicle() status = %q, want active", created.Status)
	}
	if created.InspectionTracked || created.InsuranceTracked {
		t.Fatalf("CreateVehicle() tracking flags must keep false values")
	}
	if created.LocationName != "Depot" || created.CompanyName != "Anadolu Lojistik" {
		t.Fatalf("CreateVehicle() names = %q/%q", created.CompanyName, created.LocationName)
	}
	if created.LocationResponsibleEmail == nil || *created.LocationResponsibleEmail != email {
		t.Fatalf("CreateVehicle() responsible email = %v", created.LocationResponsibleEmail)
	}

	if _, err := repo.GetVehicleByPlate(ctx, "06XYZ99"); !errors.Is(err, ports.ErrVehicleNotFound) {
		t.Fatalf("GetVehicleByPlate() error = %v, want ErrVehicleNotFound", err)
	}
	if _, err := repo.CreateLocation(ctx, ports.Location{CompanyID: 999, Name: "ghost"}); !errors.Is(err, ports.ErrCompanyNotFound) {
		t.Fatalf("CreateLocation() error = %v, want ErrCompanyNotFound", err)
	}
}

func TestSetVehicleExpiryClearsToNull(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()
	v := seedVehicle(t, repo, "34EXP01", nil, compliance.StatusActive)

	until := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.SetVehicleExpiry(ctx, v.ID, ports.ExpiryInspection, &until); err != nil {
		t.Fatalf("SetVehicleExpiry() error = %v", err)
	}
	got, err := repo.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle() error = %v", err)
	}
	if got.InspectionExpiry == nil || !got.InspectionExpiry.Equal(until) {
		t.Fatalf("InspectionExpiry = %v, want %v", got.InspectionExpiry, until)
	}

	if err := repo.SetVehicleExpiry(ctx, v.ID, ports.ExpiryInspection, nil); err != nil {
		t.Fatalf("SetVehicleExpiry(nil) error = %v", err)
	}
	got, err = repo.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle() error = %v", err)
	}
	if got.InspectionExpiry != nil {
		t.Fatalf("InspectionExpiry = %v, want nil", got.InspectionExpiry)
	}

	if err := repo.SetVehicleExpiry(ctx, v.ID, "plate", nil); err == nil {
		t.Fatalf("SetVehicleExpiry(unknown field) expected error")
	}
}

func TestParkActiveVehiclesOnlyTouchesActive(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()

	active := seedVehicle(t, repo, "34ACT01", nil, compliance.StatusActive)
	held := seedVehicle(t, repo, "34HLD01", nil, compliance.StatusLegalHold)

	n, err := repo.ParkActiveVehicles(ctx, []uint{active.ID, held.ID})
	if err != nil {
		t.Fatalf("ParkActiveVehicles() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("ParkActiveVehicles() = %d, want 1", n)
	}

	again, err := repo.ParkActiveVehicles(ctx, []uint{active.ID})
	if err != nil {
		t.Fatalf("ParkActiveVehicles(again) error = %v", err)
	}
	if again != 0 {
		t.Fatalf("ParkActiveVehicles(again) = %d, want 0", again)
	}

	got, err := repo.GetVehicle(ctx, held.ID)
	if err != nil {
		t.Fatalf("GetVehicle() error = %v", err)
	}
	if got.Status != compliance.StatusLegalHold {
		t.Fatalf("legal hold vehicle status = %q", got.Status)
	}
}

func TestListVehiclesScopeAndStatus(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()

	company, err := repo.CreateCompany(ctx, ports.Company{Name: "Acme"})
	if err != nil {
		t.Fatalf("CreateCompany() error = %v", err)
	}
	north, err := repo.CreateLocation(ctx, ports.Location{CompanyID: company.ID, Name: "North"})
	if err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}
	south, err := repo.CreateLocation(ctx, ports.Location{CompanyID: company.ID, Name: "South"})
	if err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	seedVehicle(t, repo, "N1", &north.ID, compliance.StatusActive)
	seedVehicle(t, repo, "N2", &north.ID, compliance.StatusParked)
	seedVehicle(t, repo, "S1", &south.ID, compliance.StatusMaintenance)

	items, err := repo.ListVehicles(ctx, ports.VehicleFilter{Scope: compliance.Scope{LocationID: &north.ID}})
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if len(items) != 2 || items[0].Plate != "N1" || items[1].Plate != "N2" {
		t.Fatalf("ListVehicles(north) = %#v", items)
	}

	items, err = repo.ListVehicles(ctx, ports.VehicleFilter{
		ExcludeStatuses: []compliance.VehicleStatus{compliance.StatusParked, compliance.StatusMaintenance},
	})
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if len(items) != 1 || items[0].Plate != "N1" {
		t.Fatalf("ListVehicles(exclude) = %#v", items)
	}

	items, err = repo.ListVehicles(ctx, ports.VehicleFilter{Scope: compliance.Scope{Deny: true}})
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ListVehicles(deny) len = %d, want 0", len(items))
	}
}

func TestInspectionCRUD(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()
	v := seedVehicle(t, repo, "34INS01", nil, compliance.StatusActive)

	inspected := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateInspection(ctx, ports.Inspection{
		VehicleID:   v.ID,
		InspectedAt: inspected,
		ValidUntil:  inspected.AddDate(2, 0, 0),
		Outcome:     compliance.OutcomePassed,
		Kind:        compliance.KindPeriodic,
		Station:     "TÜVTÜRK Ikitelli",
	})
	if err != nil {
		t.Fatalf("CreateInspection() error = %v", err)
	}

	created.Outcome = compliance.OutcomeFailed
	created.FailureReason = "brakes"
	updated, err := repo.UpdateInspection(ctx, created)
	if err != nil {
		t.Fatalf("UpdateInspection() error = %v", err)
	}
	if updated.Outcome != compliance.OutcomeFailed || updated.FailureReason != "brakes" {
		t.Fatalf("UpdateInspection() = %+v", updated)
	}
	if updated.Station != "TÜVTÜRK Ikitelli" {
		t.Fatalf("UpdateInspection() station = %q", updated.Station)
	}

	items, err := repo.ListInspections(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListInspections() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListInspections() len = %d, want 1", len(items))
	}

	if err := repo.DeleteInspection(ctx, created.ID); err != nil {
		t.Fatalf("DeleteInspection() error = %v", err)
	}
	if err := repo.DeleteInspection(ctx, created.ID); !errors.Is(err, ports.ErrInspectionNotFound) {
		t.Fatalf("DeleteInspection(again) error = %v, want ErrInspectionNotFound", err)
	}
	if _, err := repo.GetInspection(ctx, created.ID); !errors.Is(err, ports.ErrInspectionNotFound) {
		t.Fatalf("GetInspection() error = %v, want ErrInspectionNotFound", err)
	}
}

func TestListInsurancesDue(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	active := seedVehicle(t, repo, "34DUE01", nil, compliance.StatusActive)
	parked := seedVehicle(t, repo, "34DUE02", nil, compliance.StatusParked)
	untracked, err := repo.CreateVehicle(ctx, ports.Vehicle{Plate: "34DUE03", InspectionTracked: true})
	if err != nil {
		t.Fatalf("create untracked vehicle: %v", err)
	}

	for _, rec := range []ports.Insurance{
		{VehicleID: active.ID, SubType: compliance.SubTypeTraffic, StartsAt: now.AddDate(-1, 0, 0), ValidUntil: now.AddDate(0, 0, 10)},
		{VehicleID: active.ID, SubType: compliance.SubTypeComprehensive, StartsAt: now.AddDate(-1, 0, 0), ValidUntil: now.AddDate(0, 0, 90)},
		{VehicleID: active.ID, SubType: compliance.SubTypeSupplementaryLiability, StartsAt: now.AddDate(-1, 0, 0), ValidUntil: now.AddDate(0, 0, -3)},
		{VehicleID: parked.ID, SubType: compliance.SubTypeTraffic, StartsAt: now.AddDate(-1, 0, 0), ValidUntil: now.AddDate(0, 0, -1)},
		{VehicleID: untracked.ID, SubType: compliance.SubTypeTraffic, StartsAt: now.AddDate(-1, 0, 0), ValidUntil: now.AddDate(0, 0, -1)},
	} {
		if _, err := repo.CreateInsurance(ctx, rec); err != nil {
			t.Fatalf("CreateInsurance() error = %v", err)
		}
	}

	items, err := repo.ListInsurancesDue(ctx, ports.InsuranceDueFilter{
		ExcludeStatuses:  []compliance.VehicleStatus{compliance.StatusParked, compliance.StatusMaintenance},
		ValidUntilBefore: now.AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("ListInsurancesDue() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListInsurancesDue() len = %d, want 2", len(items))
	}
	if items[0].Insurance.SubType != compliance.SubTypeSupplementaryLiability || items[1].Insurance.SubType != compliance.SubTypeTraffic {
		t.Fatalf("ListInsurancesDue() order = %q, %q", items[0].Insurance.SubType, items[1].Insurance.SubType)
	}
	if items[0].Vehicle.Plate != "34DUE01" {
		t.Fatalf("ListInsurancesDue() vehicle = %q", items[0].Vehicle.Plate)
	}
}

func TestSweepLogsNewestFirst(t *testing.T) {
	repo, _ := setupFleetRepository(t)
	ctx := context.Background()

	for i, status := range []string{"success", "error"} {
		if err := repo.AppendSweepLog(ctx, ports.SweepLogEntry{
			RunID:         "run",
			JobName:       "expired_vehicles",
			Status:        status,
			Message:       "m",
			AffectedCount: i,
		}); err != nil {
			t.Fatalf("AppendSweepLog() error = %v", err)
		}
	}
	if err := repo.AppendSweepLog(ctx, ports.SweepLogEntry{RunID: "r2", JobName: "weekly_report", Status: "success", Message: "m"}); err != nil {
		t.Fatalf("AppendSweepLog() error = %v", err)
	}

	items, err := repo.ListSweepLogs(ctx, "expired_vehicles", 10)
	if err != nil {
		t.Fatalf("ListSweepLogs() error = %v", err)
	}
	if len(items) != 2 || items[0].Status != "error" {
		t.Fatalf("ListSweepLogs() = %#v", items)
	}
}

func TestListActiveUsersByRoles(t *testing.T) {
	_, users := setupFleetRepository(t)
	ctx := context.Background()

	for _, u := range []ports.User{
		{Email: "root@fleet.test", Role: compliance.RoleSuperAdmin, Active: true},
		{Email: "boss@fleet.test", Role: compliance.RoleCompanyManager, Active: true},
		{Email: "gone@fleet.test", Role: compliance.RoleCompanyManager, Active: false},
		{Email: "chief@fleet.test", Role: compliance.RoleLocationChief, Active: true},
	} {
		if _, err := users.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}

	items, err := users.ListActiveUsersByRoles(ctx, []compliance.Role{compliance.RoleSuperAdmin, compliance.RoleCompanyManager})
	if err != nil {
		t.Fatalf("ListActiveUsersByRoles() error = %v", err)
	}
	if len(items) != 2 || items[0].Email != "root@fleet.test" || items[1].Email != "boss@fleet.test" {
		t.Fatalf("ListActiveUsersByRoles() = %#v", items)
	}

	got, err := users.GetUserByEmail(ctx, "CHIEF@fleet.test")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.Role != compliance.RoleLocationChief {
		t.Fatalf("GetUserByEmail() role = %q", got.Role)
	}
}
