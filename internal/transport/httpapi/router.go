package httpapi

import (
	"context"
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fleetcheck/internal/bootstrap/logging"
	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/compliance"
	"fleetcheck/internal/usecase/jobs"
)

type JobRunner interface {
	Run(ctx context.Context, name string) (jobs.Summary, error)
}

type ComplianceService interface {
	VehicleCompliance(ctx context.Context, plate string, scope domain.Scope) (compliance.VehicleCompliance, error)
	ListAlarms(ctx context.Context, scope domain.Scope) ([]compliance.VehicleCompliance, error)
	FleetSummary(ctx context.Context, scope domain.Scope) (compliance.FleetSummary, error)
	ChangeVehicleStatus(ctx context.Context, plate string, target string) (domain.Transition, error)

	ListInspections(ctx context.Context, plate string) ([]ports.Inspection, error)
	CreateInspection(ctx context.Context, input compliance.CreateInspectionInput) (compliance.InspectionResult, error)
	UpdateInspection(ctx context.Context, input compliance.UpdateInspectionInput) (compliance.InspectionResult, error)
	DeleteInspection(ctx context.Context, recordID uint) (compliance.DeleteResult, error)

	ListInsurances(ctx context.Context, plate string) ([]ports.Insurance, error)
	CreateInsurance(ctx context.Context, input compliance.CreateInsuranceInput) (compliance.InsuranceResult, error)
	UpdateInsurance(ctx context.Context, input compliance.UpdateInsuranceInput) (compliance.InsuranceResult, error)
	DeleteInsurance(ctx context.Context, recordID uint) (compliance.DeleteResult, error)
}

type Deps struct {
	Compliance ComplianceService
	Jobs       JobRunner
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Health reports readiness for /healthz when set.
	Health     func(ctx context.Context) error
	CronSecret string
	// APIToken guards /api routes other than the cron trigger when set.
	APIToken string
}

type handler struct {
	deps Deps
}

func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", h.handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/cron", h.handleCron)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(deps.APIToken))

			r.Get("/alarms", h.handleListAlarms)
			r.Get("/summary", h.handleSummary)

			r.Route("/vehicles/{plate}", func(r chi.Router) {
				r.Get("/compliance", h.handleVehicleCompliance)
				r.Put("/status", h.handleChangeStatus)
				r.Get("/inspections", h.handleListInspections)
				r.Post("/inspections", h.handleCreateInspection)
				r.Get("/insurances", h.handleListInsurances)
				r.Post("/insurances", h.handleCreateInsurance)
			})

			r.Put("/inspections/{id}", h.handleUpdateInspection)
			r.Delete("/inspections/{id}", h.handleDeleteInspection)
			r.Put("/insurances/{id}", h.handleUpdateInsurance)
			r.Delete("/insurances/{id}", h.handleDeleteInsurance)
		})
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bearerAuth rejects requests without the configured token. An empty token
// disables the check.
func bearerAuth(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && !validBearer(r.Header.Get("Authorization"), token) {
				writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validBearer(header string, secret string) bool {
	const prefix = "Bearer "
	header = strings.TrimSpace(header)
	if secret == "" || len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return false
	}
	return hmac.Equal([]byte(strings.TrimSpace(header[len(prefix):])), []byte(secret))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("component", "http.server"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Info(
			ctx,
			"http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}
