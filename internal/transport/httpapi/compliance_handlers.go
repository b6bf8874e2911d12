package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/usecase/compliance"
)

func (h *handler) handleVehicleCompliance(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.deps.Compliance.VehicleCompliance(r.Context(), chi.URLParam(r, "plate"), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceResponse(out))
}

func (h *handler) handleListAlarms(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	alarms, err := h.deps.Compliance.ListAlarms(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]complianceResponse, 0, len(alarms))
	for _, a := range alarms {
		items = append(items, toComplianceResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.deps.Compliance.FleetSummary(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if !decodeBody(w, r, &body) {
		return
	}
	tr, err := h.deps.Compliance.ChangeVehicleStatus(r.Context(), chi.URLParam(r, "plate"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Event: tr.Event, From: string(tr.From), To: string(tr.To)})
}

func (h *handler) handleListInspections(w http.ResponseWriter, r *http.Request) {
	records, err := h.deps.Compliance.ListInspections(r.Context(), chi.URLParam(r, "plate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]inspectionResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toInspectionResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var body inspectionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	inspectedAt, err := parseDate("inspected_at", body.InspectedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	validUntil, err := parseDate("valid_until", body.ValidUntil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.deps.Compliance.CreateInspection(r.Context(), compliance.CreateInspectionInput{
		Plate:         chi.URLParam(r, "plate"),
		InspectedAt:   inspectedAt,
		ValidUntil:    validUntil,
		Outcome:       deref(body.Outcome),
		Kind:          deref(body.Kind),
		Station:       deref(body.Station),
		StationRegion: deref(body.StationRegion),
		ReportNo:      deref(body.ReportNo),
		Fee:           body.Fee,
		FailureReason: deref(body.FailureReason),
		FailureDetail: deref(body.FailureDetail),
		Notes:         deref(body.Notes),
		CreatedBy:     body.CreatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse[inspectionResponse]{
		Record:        toInspectionResponse(out.Record),
		VehicleExpiry: formatDate(out.VehicleExpiry),
	})
}

func (h *handler) handleUpdateInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var body inspectionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	inspectedAt, err := parseDate("inspected_at", body.InspectedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	validUntil, err := parseDate("valid_until", body.ValidUntil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.deps.Compliance.UpdateInspection(r.Context(), compliance.UpdateInspectionInput{
		ID:            id,
		VehicleID:     body.VehicleID,
		InspectedAt:   inspectedAt,
		ValidUntil:    validUntil,
		Outcome:       body.Outcome,
		Kind:          body.Kind,
		Station:       body.Station,
		StationRegion: body.StationRegion,
		ReportNo:      body.ReportNo,
		Fee:           body.Fee,
		FailureReason: body.FailureReason,
		FailureDetail: body.FailureDetail,
		Notes:         body.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse[inspectionResponse]{
		Record:        toInspectionResponse(out.Record),
		VehicleExpiry: formatDate(out.VehicleExpiry),
	})
}

func (h *handler) handleDeleteInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	out, err := h.deps.Compliance.DeleteInspection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{VehicleID: out.VehicleID, VehicleExpiry: formatDate(out.VehicleExpiry)})
}

func (h *handler) handleListInsurances(w http.ResponseWriter, r *http.Request) {
	records, err := h.deps.Compliance.ListInsurances(r.Context(), chi.URLParam(r, "plate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]insuranceResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toInsuranceResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) handleCreateInsurance(w http.ResponseWriter, r *http.Request) {
	var body insuranceRequest
	if !decodeBody(w, r, &body) {
		return
	}
	dates, err := parseInsuranceDates(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.deps.Compliance.CreateInsurance(r.Context(), compliance.CreateInsuranceInput{
		Plate:            chi.URLParam(r, "plate"),
		SubType:          deref(body.SubType),
		PolicyNo:         deref(body.PolicyNo),
		Insurer:          deref(body.Insurer),
		AgencyName:       deref(body.AgencyName),
		AgencyPhone:      deref(body.AgencyPhone),
		StartsAt:         dates.startsAt,
		ValidUntil:       dates.validUntil,
		Premium:          body.Premium,
		PaymentStatus:    deref(body.PaymentStatus),
		PaymentPlan:      deref(body.PaymentPlan),
		InstallmentCount: body.InstallmentCount,
		PaidAt:           dates.paidAt,
		Coverage:         deref(body.Coverage),
		Notes:            deref(body.Notes),
		CreatedBy:        body.CreatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse[insuranceResponse]{
		Record:        toInsuranceResponse(out.Record),
		VehicleExpiry: formatDate(out.VehicleExpiry),
	})
}

func (h *handler) handleUpdateInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var body insuranceRequest
	if !decodeBody(w, r, &body) {
		return
	}
	dates, err := parseInsuranceDates(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.deps.Compliance.UpdateInsurance(r.Context(), compliance.UpdateInsuranceInput{
		ID:               id,
		VehicleID:        body.VehicleID,
		SubType:          body.SubType,
		PolicyNo:         body.PolicyNo,
		Insurer:          body.Insurer,
		AgencyName:       body.AgencyName,
		AgencyPhone:      body.AgencyPhone,
		StartsAt:         dates.startsAt,
		ValidUntil:       dates.validUntil,
		Premium:          body.Premium,
		PaymentStatus:    body.PaymentStatus,
		PaymentPlan:      body.PaymentPlan,
		InstallmentCount: body.InstallmentCount,
		PaidAt:           dates.paidAt,
		Coverage:         body.Coverage,
		Notes:            body.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse[insuranceResponse]{
		Record:        toInsuranceResponse(out.Record),
		VehicleExpiry: formatDate(out.VehicleExpiry),
	})
}

func (h *handler) handleDeleteInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	out, err := h.deps.Compliance.DeleteInsurance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{VehicleID: out.VehicleID, VehicleExpiry: formatDate(out.VehicleExpiry)})
}

type insuranceDates struct {
	startsAt   *time.Time
	validUntil *time.Time
	paidAt     *time.Time
}

func parseInsuranceDates(body insuranceRequest) (insuranceDates, error) {
	var (
		out insuranceDates
		err error
	)
	if out.startsAt, err = parseDate("starts_at", body.StartsAt); err != nil {
		return insuranceDates{}, err
	}
	if out.validUntil, err = parseDate("valid_until", body.ValidUntil); err != nil {
		return insuranceDates{}, err
	}
	if out.paidAt, err = parseDate("paid_at", body.PaidAt); err != nil {
		return insuranceDates{}, err
	}
	return out, nil
}

func recordID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, r, fmt.Errorf("%w: record id %q is not valid", domain.ErrValidation, raw))
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err))
		return false
	}
	return true
}
