package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "fleetcheck/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "fleetcheck/internal/infrastructure/persistence/sqlite/uow"
	"fleetcheck/internal/usecase/compliance"
	"fleetcheck/internal/usecase/jobs"
)

const testCronSecret = "cron-secret"

type stubRunner struct {
	called bool
	name   string
	result jobs.Summary
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string) (jobs.Summary, error) {
	s.called = true
	s.name = name
	if s.err != nil {
		return jobs.Summary{}, s.err
	}
	out := s.result
	out.Job = name
	return out, nil
}

func newComplianceService(t *testing.T) *compliance.Service {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "api.sqlite")), &gorm.Config{})
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

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return compliance.NewService(
		sqliterepo.NewFleetRepository(db),
		sqliterepo.NewUserRepository(db),
		sqliteuow.NewUnitOfWork(db),
	).WithClock(func() time.Time { return now })
}

func serve(t *testing.T, h http.Handler, method string, target string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decodeJSONBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal response json: %v; body=%q", err, string(raw))
	}
	return out
}

func TestCronRejectsWrongSecret(t *testing.T) {
	runner := &stubRunner{}
	h := NewRouter(Deps{Jobs: runner, CronSecret: testCronSecret})

	for _, token := range []string{"", "wrong"} {
		resp := serve(t, h, http.MethodPost, "/api/cron?job=expired_vehicles", "", token)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("token %q status = %d, want %d", token, resp.Code, http.StatusUnauthorized)
		}
	}
	if runner.called {
		t.Fatal("runner called = true, want false")
	}
}

func TestCronRequiresConfiguredSecret(t *testing.T) {
	runner := &stubRunner{}
	h := NewRouter(Deps{Jobs: runner})

	resp := serve(t, h, http.MethodPost, "/api/cron?job=expired_vehicles", "", "anything")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestCronMissingJobReturns400(t *testing.T) {
	runner := &stubRunner{}
	h := NewRouter(Deps{Jobs: runner, CronSecret: testCronSecret})

	resp := serve(t, h, http.MethodPost, "/api/cron", "", testCronSecret)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusBadRequest, resp.Body.String())
	}
	if runner.called {
		t.Fatal("runner called = true, want false")
	}
}

func TestCronUnknownJobReturns400(t *testing.T) {
	runner := &stubRunner{err: errors.Join(jobs.ErrUnknownJob, errors.New(`"nightly"`))}
	h := NewRouter(Deps{Jobs: runner, CronSecret: testCronSecret})

	resp := serve(t, h, http.MethodPost, "/api/cron?job=nightly", "", testCronSecret)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestCronJobFailureReturns500(t *testing.T) {
	runner := &stubRunner{err: &jobs.ExecutionError{Job: jobs.JobExpiredVehicles, RunID: "r1", Err: errors.New("database is locked")}}
	h := NewRouter(Deps{Jobs: runner, CronSecret: testCronSecret})

	resp := serve(t, h, http.MethodPost, "/api/cron?job=expired_vehicles", "", testCronSecret)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusInternalServerError)
	}
	body := decodeJSONBody(t, resp.Body.Bytes())
	if !strings.Contains(body["error"].(string), "database is locked") {
		t.Fatalf("error = %#v", body["error"])
	}
}

func TestCronJobFromJSONBody(t *testing.T) {
	runner := &stubRunner{result: jobs.Summary{RunID: "r1", Message: "parked 2 expired vehicles, notification sent", Affected: 2}}
	h := NewRouter(Deps{Jobs: runner, CronSecret: testCronSecret})

	resp := serve(t, h, http.MethodPost, "/api/cron", `{"job":"weekly_report"}`, testCronSecret)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
	if runner.name != jobs.JobWeeklyReport {
		t.Fatalf("job = %q, want weekly_report", runner.name)
	}
	body := decodeJSONBody(t, resp.Body.Bytes())
	if body["job"] != "weekly_report" || body["affected"] != float64(2) {
		t.Fatalf("body = %#v", body)
	}
}

func TestHealthzReportsFailure(t *testing.T) {
	h := NewRouter(Deps{Health: func(context.Context) error { return errors.New("db down") }})

	resp := serve(t, h, http.MethodGet, "/healthz", "", "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusServiceUnavailable)
	}
}

func TestAPITokenGuardsRoutes(t *testing.T) {
	h := NewRouter(Deps{Compliance: newComplianceService(t), APIToken: "api-token"})

	if resp := serve(t, h, http.MethodGet, "/api/alarms", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
	if resp := serve(t, h, http.MethodGet, "/api/alarms", "", "api-token"); resp.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	svc := newComplianceService(t)
	if _, err := svc.RegisterVehicle(context.Background(), compliance.RegisterVehicleInput{
		Plate: "34 abc 123", InspectionTracked: true, InsuranceTracked: true,
	}); err != nil {
		t.Fatalf("RegisterVehicle() error = %v", err)
	}
	h := NewRouter(Deps{Compliance: svc})

	resp := serve(t, h, http.MethodPost, "/api/vehicles/34ABC123/inspections",
		`{"inspected_at":"2025-05-10","valid_until":"2026-05-10","outcome":"passed"}`, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body=%s", resp.Code, http.StatusCreated, resp.Body.String())
	}
	created := decodeJSONBody(t, resp.Body.Bytes())
	if created["vehicle_expiry"] != "2026-05-10" {
		t.Fatalf("vehicle_expiry = %#v, want 2026-05-10", created["vehicle_expiry"])
	}
	record := created["record"].(map[string]any)
	id := int(record["id"].(float64))

	resp = serve(t, h, http.MethodGet, "/api/vehicles/34ABC123/compliance", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("compliance status = %d; body=%s", resp.Code, resp.Body.String())
	}
	view := decodeJSONBody(t, resp.Body.Bytes())
	inspection := view["inspection"].(map[string]any)
	if inspection["state"] != "approaching" || inspection["days"] != float64(9) {
		t.Fatalf("inspection alarm = %#v", inspection)
	}

	resp = serve(t, h, http.MethodPut, "/api/inspections/"+strconv.Itoa(id), `{"outcome":"failed"}`, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("update status = %d; body=%s", resp.Code, resp.Body.String())
	}
	if updated := decodeJSONBody(t, resp.Body.Bytes()); updated["vehicle_expiry"] != nil {
		t.Fatalf("vehicle_expiry after failed = %#v, want null", updated["vehicle_expiry"])
	}

	resp = serve(t, h, http.MethodDelete, "/api/inspections/"+strconv.Itoa(id), "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete status = %d; body=%s", resp.Code, resp.Body.String())
	}
	resp = serve(t, h, http.MethodDelete, "/api/inspections/"+strconv.Itoa(id), "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", resp.Code, http.StatusNotFound)
	}
}

func TestErrorMapping(t *testing.T) {
	svc := newComplianceService(t)
	if _, err := svc.RegisterVehicle(context.Background(), compliance.RegisterVehicleInput{Plate: "06XYZ01", Status: "parked"}); err != nil {
		t.Fatalf("RegisterVehicle() error = %v", err)
	}
	h := NewRouter(Deps{Compliance: svc})

	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"unknown vehicle", http.MethodGet, "/api/vehicles/NOPE/compliance", "", http.StatusNotFound},
		{"missing outcome", http.MethodPost, "/api/vehicles/06XYZ01/inspections", `{"inspected_at":"2025-01-01","valid_until":"2026-01-01"}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/vehicles/06XYZ01/insurances", `{"sub_type":"traffic","starts_at":"yesterday","valid_until":"2026-01-01"}`, http.StatusBadRequest},
		{"bad id", http.MethodDelete, "/api/insurances/abc", "", http.StatusBadRequest},
		{"illegal transition", http.MethodPut, "/api/vehicles/06XYZ01/status", `{"status":"parked"}`, http.StatusConflict},
		{"unknown status", http.MethodPut, "/api/vehicles/06XYZ01/status", `{"status":"scrapped"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := serve(t, h, tc.method, tc.target, tc.body, "")
		if resp.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d; body=%s", tc.name, resp.Code, tc.want, resp.Body.String())
		}
	}

	resp := serve(t, h, http.MethodPut, "/api/vehicles/06XYZ01/status", `{"status":"active"}`, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("activate status = %d; body=%s", resp.Code, resp.Body.String())
	}
	if body := decodeJSONBody(t, resp.Body.Bytes()); body["event"] != "activate" || body["to"] != "active" {
		t.Fatalf("transition = %#v", body)
	}
}
