package compliance

import (
	"context"
	"errors"
	"testing"
)

func TestStatusMachineParkOnlyFromActive(t *testing.T) {
	ctx := context.Background()

	tr, err := NewStatusMachine(StatusActive).Fire(ctx, EventPark)
	if err != nil {
		t.Fatalf("Fire(park) error = %v", err)
	}
	if tr.From != StatusActive || tr.To != StatusParked {
		t.Fatalf("Fire(park) = %+v", tr)
	}

	for _, status := range []VehicleStatus{StatusParked, StatusLegalHold, StatusMaintenance} {
		_, err := NewStatusMachine(status).Fire(ctx, EventPark)
		if !errors.Is(err, ErrInvalidStatusTransition) {
			t.Fatalf("Fire(park) from %s error = %v, want ErrInvalidStatusTransition", status, err)
		}
		if CanPark(status) {
			t.Fatalf("CanPark(%s) = true", status)
		}
	}
}

func TestStatusMachineActivate(t *testing.T) {
	ctx := context.Background()
	for _, status := range []VehicleStatus{StatusParked, StatusLegalHold, StatusMaintenance} {
		tr, err := NewStatusMachine(status).Fire(ctx, EventActivate)
		if err != nil {
			t.Fatalf("Fire(activate) from %s error = %v", status, err)
		}
		if tr.To != StatusActive {
			t.Fatalf("Fire(activate) to = %s", tr.To)
		}
	}

	if _, err := NewStatusMachine(StatusActive).Fire(ctx, EventActivate); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("Fire(activate) from active error = %v", err)
	}
}

func TestEventForTarget(t *testing.T) {
	event, err := EventForTarget(StatusLegalHold)
	if err != nil || event != EventLegalHold {
		t.Fatalf("EventForTarget(legal_hold) = %q, %v", event, err)
	}
	if _, err := EventForTarget("scrapped"); !errors.Is(err, ErrValidation) {
		t.Fatalf("EventForTarget(scrapped) error = %v, want ErrValidation", err)
	}
}

func TestParseEnums(t *testing.T) {
	if st, err := ParseInsuranceSubType("Supplementary-Liability"); err != nil || st != SubTypeSupplementaryLiability {
		t.Fatalf("ParseInsuranceSubType() = %q, %v", st, err)
	}
	if _, err := ParseInspectionOutcome("maybe"); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("ParseInspectionOutcome() error = %v, want ErrInvalidOutcome", err)
	}
	if kind, err := ParseInspectionKind(""); err != nil || kind != KindPeriodic {
		t.Fatalf("ParseInspectionKind(\"\") = %q, %v", kind, err)
	}
	if SubTypeSupplementaryLiability.FeedsExpiryField() {
		t.Fatalf("supplementary liability must not feed an expiry field")
	}
}

func TestScopeForUser(t *testing.T) {
	company := uint(3)
	location := uint(7)
	other := uint(9)

	if s := ScopeForUser(Principal{Role: RoleSuperAdmin}); s.CompanyID != nil || s.LocationID != nil || s.Deny {
		t.Fatalf("super admin scope = %+v, want unrestricted", s)
	}

	manager := ScopeForUser(Principal{Role: RoleCompanyManager, CompanyID: &company, LocationID: &location})
	if !manager.Allows(&company, &other) || manager.Allows(&other, &location) {
		t.Fatalf("company manager scope = %+v", manager)
	}

	chief := ScopeForUser(Principal{Role: RoleLocationChief, CompanyID: &company, LocationID: &location})
	if !chief.Allows(&company, &location) || chief.Allows(&company, &other) {
		t.Fatalf("location chief scope = %+v", chief)
	}

	if s := ScopeForUser(Principal{Role: RoleCompanyManager}); !s.Deny {
		t.Fatalf("manager without company must be denied")
	}
	if (Principal{Role: RoleLocationChief}).CanDeleteRecords() {
		t.Fatalf("location chief must not delete records")
	}
}
