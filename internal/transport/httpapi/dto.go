package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/compliance"
)

const dateLayout = "2006-01-02"

type vehicleResponse struct {
	ID                           uint    `json:"id"`
	Plate                        string  `json:"plate"`
	CompanyID                    *uint   `json:"company_id,omitempty"`
	LocationID                   *uint   `json:"location_id,omitempty"`
	Company                      string  `json:"company,omitempty"`
	Location                     string  `json:"location,omitempty"`
	Status                       string  `json:"status"`
	InspectionTracked            bool    `json:"inspection_tracked"`
	InsuranceTracked             bool    `json:"insurance_tracked"`
	InspectionExpiry             *string `json:"inspection_expiry"`
	TrafficInsuranceExpiry       *string `json:"traffic_insurance_expiry"`
	ComprehensiveInsuranceExpiry *string `json:"comprehensive_insurance_expiry"`
}

type alarmResponse struct {
	Expiry  *string `json:"expiry"`
	Days    *int    `json:"days"`
	State   string  `json:"state"`
	Tracked bool    `json:"tracked"`
}

type complianceResponse struct {
	Vehicle                vehicleResponse `json:"vehicle"`
	Inspection             alarmResponse   `json:"inspection"`
	TrafficInsurance       alarmResponse   `json:"traffic_insurance"`
	ComprehensiveInsurance alarmResponse   `json:"comprehensive_insurance"`
	NeedsAttention         bool            `json:"needs_attention"`
}

type summaryResponse struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	Expired       int            `json:"expired"`
	Approaching   int            `json:"approaching"`
	InspectionDue int            `json:"inspection_due"`
	InsuranceDue  int            `json:"insurance_due"`
}

type transitionResponse struct {
	Event string `json:"event"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type inspectionResponse struct {
	ID            uint     `json:"id"`
	VehicleID     uint     `json:"vehicle_id"`
	InspectedAt   string   `json:"inspected_at"`
	ValidUntil    string   `json:"valid_until"`
	Outcome       string   `json:"outcome"`
	Kind          string   `json:"kind"`
	Station       string   `json:"station,omitempty"`
	StationRegion string   `json:"station_region,omitempty"`
	ReportNo      string   `json:"report_no,omitempty"`
	Fee           *float64 `json:"fee,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
	FailureDetail string   `json:"failure_detail,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type insuranceResponse struct {
	ID               uint     `json:"id"`
	VehicleID        uint     `json:"vehicle_id"`
	SubType          string   `json:"sub_type"`
	PolicyNo         string   `json:"policy_no,omitempty"`
	Insurer          string   `json:"insurer,omitempty"`
	AgencyName       string   `json:"agency_name,omitempty"`
	AgencyPhone      string   `json:"agency_phone,omitempty"`
	StartsAt         string   `json:"starts_at"`
	ValidUntil       string   `json:"valid_until"`
	Premium          *float64 `json:"premium,omitempty"`
	PaymentStatus    string   `json:"payment_status"`
	PaymentPlan      string   `json:"payment_plan,omitempty"`
	InstallmentCount *int     `json:"installment_count,omitempty"`
	PaidAt           *string  `json:"paid_at,omitempty"`
	Coverage         string   `json:"coverage,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

type recordResponse[T any] struct {
	Record        T       `json:"record"`
	VehicleExpiry *string `json:"vehicle_expiry"`
}

type deleteResponse struct {
	VehicleID     uint    `json:"vehicle_id"`
	VehicleExpiry *string `json:"vehicle_expiry"`
}

type inspectionRequest struct {
	VehicleID     *uint    `json:"vehicle_id"`
	InspectedAt   *string  `json:"inspected_at"`
	ValidUntil    *string  `json:"valid_until"`
	Outcome       *string  `json:"outcome"`
	Kind          *string  `json:"kind"`
	Station       *string  `json:"station"`
	StationRegion *string  `json:"station_region"`
	ReportNo      *string  `json:"report_no"`
	Fee           *float64 `json:"fee"`
	FailureReason *string  `json:"failure_reason"`
	FailureDetail *string  `json:"failure_detail"`
	Notes         *string  `json:"notes"`
	CreatedBy     *uint    `json:"created_by"`
}

type insuranceRequest struct {
	VehicleID        *uint    `json:"vehicle_id"`
	SubType          *string  `json:"sub_type"`
	PolicyNo         *string  `json:"policy_no"`
	Insurer          *string  `json:"insurer"`
	AgencyName       *string  `json:"agency_name"`
	AgencyPhone      *string  `json:"agency_phone"`
	StartsAt         *string  `json:"starts_at"`
	ValidUntil       *string  `json:"valid_until"`
	Premium          *float64 `json:"premium"`
	PaymentStatus    *string  `json:"payment_status"`
	PaymentPlan      *string  `json:"payment_plan"`
	InstallmentCount *int     `json:"installment_count"`
	PaidAt           *string  `json:"paid_at"`
	Coverage         *string  `json:"coverage"`
	Notes            *string  `json:"notes"`
	CreatedBy        *uint    `json:"created_by"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func toVehicleResponse(v ports.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:                           v.ID,
		Plate:                        v.Plate,
		CompanyID:                    v.CompanyID,
		LocationID:                   v.LocationID,
		Company:                      v.CompanyName,
		Location:                     v.LocationName,
		Status:                       string(v.Status),
		InspectionTracked:            v.InspectionTracked,
		InsuranceTracked:             v.InsuranceTracked,
		InspectionExpiry:             formatDate(v.InspectionExpiry),
		TrafficInsuranceExpiry:       formatDate(v.TrafficInsuranceExpiry),
		ComprehensiveInsuranceExpiry: formatDate(v.ComprehensiveInsuranceExpiry),
	}
}

func toAlarmResponse(a compliance.CategoryAlarm) alarmResponse {
	return alarmResponse{
		Expiry:  formatDate(a.Expiry),
		Days:    a.Days,
		State:   string(a.State),
		Tracked: a.Tracked,
	}
}

func toComplianceResponse(c compliance.VehicleCompliance) complianceResponse {
	return complianceResponse{
		Vehicle:                toVehicleResponse(c.Vehicle),
		Inspection:             toAlarmResponse(c.Inspection),
		TrafficInsurance:       toAlarmResponse(c.TrafficInsurance),
		ComprehensiveInsurance: toAlarmResponse(c.ComprehensiveInsurance),
		NeedsAttention:         c.NeedsAttention(),
	}
}

func toSummaryResponse(s compliance.FleetSummary) summaryResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for status, n := range s.ByStatus {
		byStatus[string(status)] = n
	}
	return summaryResponse{
		Total:         s.Total,
		ByStatus:      byStatus,
		Expired:       s.Expired,
		Approaching:   s.Approaching,
		InspectionDue: s.InspectionDue,
		InsuranceDue:  s.InsuranceDue,
	}
}

func toInspectionResponse(r ports.Inspection) inspectionResponse {
	return inspectionResponse{
		ID:            r.ID,
		VehicleID:     r.VehicleID,
		InspectedAt:   r.InspectedAt.Format(dateLayout),
		ValidUntil:    r.ValidUntil.Format(dateLayout),
		Outcome:       string(r.Outcome),
		Kind:          string(r.Kind),
		Station:       r.Station,
		StationRegion: r.StationRegion,
		ReportNo:      r.ReportNo,
		Fee:           r.Fee,
		FailureReason: r.FailureReason,
		FailureDetail: r.FailureDetail,
		Notes:         r.Notes,
	}
}

func toInsuranceResponse(r ports.Insurance) insuranceResponse {
	return insuranceResponse{
		ID:               r.ID,
		VehicleID:        r.VehicleID,
		SubType:          string(r.SubType),
		PolicyNo:         r.PolicyNo,
		Insurer:          r.Insurer,
		AgencyName:       r.AgencyName,
		AgencyPhone:      r.AgencyPhone,
		StartsAt:         r.StartsAt.Format(dateLayout),
		ValidUntil:       r.ValidUntil.Format(dateLayout),
		Premium:          r.Premium,
		PaymentStatus:    string(r.PaymentStatus),
		PaymentPlan:      r.PaymentPlan,
		InstallmentCount: r.InstallmentCount,
		PaidAt:           formatDate(r.PaidAt),
		Coverage:         r.Coverage,
		Notes:            r.Notes,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a date", domain.ErrValidation, field, value)
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scopeFromQuery(r *http.Request) (domain.Scope, error) {
	var scope domain.Scope
	for _, p := range []struct {
		name string
		dst  **uint
	}{
		{"company_id", &scope.CompanyID},
		{"location_id", &scope.LocationID},
	} {
		raw := strings.TrimSpace(r.URL.Query().Get(p.name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return domain.Scope{}, fmt.Errorf("%w: %s %q is not a valid id", domain.ErrValidation, p.name, raw)
		}
		v := uint(id)
		*p.dst = &v
	}
	return scope, nil
}
