package compliance

import (
	"fmt"
	"strings"
)

type VehicleStatus string

const (
	StatusActive      VehicleStatus = "active"
	StatusParked      VehicleStatus = "parked"
	StatusLegalHold   VehicleStatus = "legal_hold"
	StatusMaintenance VehicleStatus = "maintenance"
)

type InspectionOutcome string

const (
	OutcomePassed InspectionOutcome = "passed"
	OutcomeFailed InspectionOutcome = "failed"
)

type InspectionKind string

const (
	KindPeriodic      InspectionKind = "periodic"
	KindSupplementary InspectionKind = "supplementary"
	KindSpecial       InspectionKind = "special"
)

type InsuranceSubType string

const (
	SubTypeTraffic                InsuranceSubType = "traffic"
	SubTypeComprehensive          InsuranceSubType = "comprehensive"
	SubTypeSupplementaryLiability InsuranceSubType = "supplementary_liability"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleCompanyManager Role = "company_manager"
	RoleLocationChief  Role = "location_chief"
)

func ParseVehicleStatus(raw string) (VehicleStatus, error) {
	switch s := VehicleStatus(normalizeEnum(raw)); s {
	case StatusActive, StatusParked, StatusLegalHold, StatusMaintenance:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidVehicleStatus, raw)
	}
}

func ParseInspectionOutcome(raw string) (InspectionOutcome, error) {
	switch o := InspectionOutcome(normalizeEnum(raw)); o {
	case OutcomePassed, OutcomeFailed:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidOutcome, raw)
	}
}

// ParseInspectionKind defaults an empty kind to periodic.
func ParseInspectionKind(raw string) (InspectionKind, error) {
	switch k := InspectionKind(normalizeEnum(raw)); k {
	case "":
		return KindPeriodic, nil
	case KindPeriodic, KindSupplementary, KindSpecial:
		return k, nil
	default:
		return "", fmt.Errorf("%w: invalid inspection kind %q", ErrValidation, raw)
	}
}

func ParseInsuranceSubType(raw string) (InsuranceSubType, error) {
	switch st := InsuranceSubType(normalizeEnum(raw)); st {
	case SubTypeTraffic, SubTypeComprehensive, SubTypeSupplementaryLiability:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidSubType, raw)
	}
}

// ParsePaymentStatus defaults an empty status to unpaid.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch p := PaymentStatus(normalizeEnum(raw)); p {
	case "":
		return PaymentUnpaid, nil
	case PaymentUnpaid, PaymentPaid, PaymentPartial:
		return p, nil
	default:
		return "", fmt.Errorf("%w: invalid payment status %q", ErrValidation, raw)
	}
}

func ParseRole(raw string) (Role, error) {
	switch r := Role(normalizeEnum(raw)); r {
	case RoleSuperAdmin, RoleCompanyManager, RoleLocationChief:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidRole, raw)
	}
}

// FeedsExpiryField reports whether records of this sub-type drive a
// denormalized vehicle expiry.
func (st InsuranceSubType) FeedsExpiryField() bool {
	return st == SubTypeTraffic || st == SubTypeComprehensive
}

func normalizeEnum(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(s, "-", "_")
}

// NormalizePlate upper-cases a licence plate and drops whitespace so
// "34 abc 123" and "34ABC123" name the same vehicle.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}
