package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"fleetcheck/internal/usecase/jobs"
)

type cronRequest struct {
	Job string `json:"job"`
}

func (h *handler) handleCron(w http.ResponseWriter, r *http.Request) {
	if !validBearer(r.Header.Get("Authorization"), strings.TrimSpace(h.deps.CronSecret)) {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.deps.Jobs == nil {
		writeErrorMessage(w, http.StatusInternalServerError, "job runner is not configured")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("job"))
	if name == "" && r.Body != nil {
		var body cronRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name = strings.TrimSpace(body.Job)
	}
	if name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "job is required, one of "+strings.Join(jobs.Names(), ", "))
		return
	}

	summary, err := h.deps.Jobs.Run(r.Context(), name)
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
