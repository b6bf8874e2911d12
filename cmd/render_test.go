package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/compliance"
)

func TestFormatDays(t *testing.T) {
	cases := map[int]string{-1: "-1 day", 1: "1 day", 0: "0 days", 12: "12 days", -40: "-40 days"}
	for in, want := range cases {
		if got := formatDays(in); got != want {
			t.Fatalf("formatDays(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("valid-until", " 2026-06-01 ")
	if err != nil {
		t.Fatalf("parseDateFlag() error = %v", err)
	}
	if got == nil || !got.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("parseDateFlag() = %v", got)
	}

	if got, err := parseDateFlag("valid-until", ""); err != nil || got != nil {
		t.Fatalf("parseDateFlag(empty) = %v, %v; want nil, nil", got, err)
	}

	_, err = parseDateFlag("valid-until", "01/06/2026")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("parseDateFlag(bad) error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "--valid-until") {
		t.Fatalf("parseDateFlag(bad) error = %q, want flag name", err)
	}
}

func TestParseRecordID(t *testing.T) {
	if id, err := parseRecordID("42"); err != nil || id != 42 {
		t.Fatalf("parseRecordID(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"0", "-1", "abc", ""} {
		if _, err := parseRecordID(raw); err == nil {
			t.Fatalf("parseRecordID(%q) expected error", raw)
		}
	}
}

func TestPatchFlagsOnlyWhenChanged(t *testing.T) {
	c := &cobra.Command{Use: "update"}
	addInsuranceFlags(c)
	if err := c.ParseFlags([]string{"--insurer", "Anadolu", "--premium", "1500.5"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	flags := c.Flags()

	if got := stringFlag(flags, "insurer"); got == nil || *got != "Anadolu" {
		t.Fatalf("stringFlag(insurer) = %v", got)
	}
	if got := stringFlag(flags, "sub-type"); got != nil {
		t.Fatalf("stringFlag(sub-type) = %q, want nil for an unset flag with a default", *got)
	}
	if got := floatFlag(flags, "premium"); got == nil || *got != 1500.5 {
		t.Fatalf("floatFlag(premium) = %v", got)
	}
	if got := intFlag(flags, "installments"); got != nil {
		t.Fatalf("intFlag(installments) = %d, want nil", *got)
	}
	if got, err := dateFlag(flags, "valid-until"); err != nil || got != nil {
		t.Fatalf("dateFlag(valid-until) = %v, %v; want nil, nil", got, err)
	}
}

func TestRenderCompliance(t *testing.T) {
	expiry := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	days := -3
	view := compliance.VehicleCompliance{
		Vehicle: testVehicle("34ABC123"),
		Inspection: compliance.CategoryAlarm{
			Expiry:  &expiry,
			Days:    &days,
			State:   domain.AlarmExpired,
			Tracked: true,
		},
		TrafficInsurance:       compliance.CategoryAlarm{State: domain.AlarmNoData, Tracked: true},
		ComprehensiveInsurance: compliance.CategoryAlarm{State: domain.AlarmNoData},
	}

	var buf bytes.Buffer
	if err := renderCompliance(&buf, view); err != nil {
		t.Fatalf("renderCompliance() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"34ABC123", "2026-05-01", "expired (-3 days)", "no-data", "untracked", "N/A"} {
		if !strings.Contains(out, want) {
			t.Fatalf("renderCompliance() output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderTable(&buf, []string{"Plate"}, nil); err != nil {
		t.Fatalf("renderTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no rows") {
		t.Fatalf("renderTable() = %q, want empty marker", buf.String())
	}
}

func testVehicle(plate string) ports.Vehicle {
	return ports.Vehicle{ID: 1, Plate: plate, Status: domain.StatusActive, LocationName: "Kadikoy"}
}
