package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/notify"
)

const (
	JobExpiredVehicles = "expired_vehicles"
	JobWeeklyReport    = "weekly_report"

	StatusSuccess = "success"
	StatusError   = "error"
)

var ErrUnknownJob = errors.New("unknown job")

// ExecutionError is returned when a run fails after it started. An error
// entry has already been appended to the sweep log when it is returned.
type ExecutionError struct {
	Job   string
	RunID string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job %s (run %s) failed: %v", e.Job, e.RunID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

type Config struct {
	AdminEmail string
}

// Summary describes a finished run.
type Summary struct {
	Job             string                   `json:"job"`
	RunID           string                   `json:"run_id"`
	Message         string                   `json:"message"`
	Affected        int                      `json:"affected"`
	Recipients      int                      `json:"recipients"`
	Notified        bool                     `json:"notified"`
	ArchiveLocation string                   `json:"archive_location,omitempty"`
	Vehicles        []notify.ExpiryAlertItem `json:"vehicles,omitempty"`
}

type Runner struct {
	repo       ports.FleetRepository
	users      ports.UserDirectory
	dispatcher *notify.Dispatcher
	archive    ports.ReportArchive
	metrics    ports.JobMetrics
	cfg        Config
	now        func() time.Time
	newRunID   func() string
}

func NewRunner(
	repo ports.FleetRepository,
	users ports.UserDirectory,
	dispatcher *notify.Dispatcher,
	archive ports.ReportArchive,
	metrics ports.JobMetrics,
	cfg Config,
) *Runner {
	if metrics == nil {
		metrics = ports.NopJobMetrics{}
	}
	return &Runner{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		archive:    archive,
		metrics:    metrics,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		newRunID:   uuid.NewString,
	}
}

func (r *Runner) WithClock(now func() time.Time) *Runner {
	if now != nil {
		r.now = now
	}
	return r
}

// Names lists the jobs Run accepts.
func Names() []string {
	return []string{JobExpiredVehicles, JobWeeklyReport}
}

func (r *Runner) Run(ctx context.Context, name string) (Summary, error) {
	if ctx == nil {
		return Summary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, errs.Wrap(err, "check context")
	}
	if r.repo == nil {
		return Summary{}, errors.New("fleet repository is required")
	}
	if r.dispatcher == nil {
		return Summary{}, errors.New("notification dispatcher is required")
	}

	var job func(context.Context) (Summary, error)
	switch name = strings.TrimSpace(name); name {
	case JobExpiredVehicles:
		job = r.sweepExpiredVehicles
	case JobWeeklyReport:
		if r.users == nil {
			return Summary{}, errors.New("user directory is required")
		}
		job = r.sendWeeklyDigest
	default:
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	runID := r.newRunID()
	ctx = logging.WithAttrs(
		ctx,
		slog.String("component", "usecase.jobs"),
		slog.String("job", name),
		slog.String("run_id", runID),
	)
	started := time.Now()
	logging.Info(ctx, "job started")

	summary, err := job(ctx)
	if err == nil {
		err = r.repo.AppendSweepLog(ctx, ports.SweepLogEntry{
			RunID:         runID,
			JobName:       name,
			Status:        StatusSuccess,
			Message:       summary.Message,
			AffectedCount: summary.Affected,
		})
		if err != nil {
			err = errs.Wrap(err, "append sweep log")
		}
	}
	if err != nil {
		err = errs.WithStack(err)
		r.fail(ctx, name, runID, err)
		r.metrics.ObserveJobRun(name, StatusError, time.Since(started))
		return Summary{}, &ExecutionError{Job: name, RunID: runID, Err: err}
	}

	summary.Job = name
	summary.RunID = runID
	r.metrics.ObserveJobRun(name, StatusSuccess, time.Since(started))
	logging.Info(
		ctx,
		"job finished",
		slog.String("message", summary.Message),
		slog.Int("affected", summary.Affected),
		slog.Duration("elapsed", time.Since(started)),
	)
	return summary, nil
}

func (r *Runner) fail(ctx context.Context, name string, runID string, cause error) {
	logging.Error(ctx, "job failed", slog.Any("err", errs.Loggable(cause)))

	// Use a fresh context so a cancelled run still leaves its error entry.
	logCtx := context.WithoutCancel(ctx)
	if err := r.repo.AppendSweepLog(logCtx, ports.SweepLogEntry{
		RunID:   runID,
		JobName: name,
		Status:  StatusError,
		Message: cause.Error(),
	}); err != nil {
		logging.Error(ctx, "append error sweep log failed", slog.Any("err", errs.Loggable(err)))
	}
}

// Logs returns the most recent sweep log entries, newest first. An empty job
// name returns entries of every job.
func (r *Runner) Logs(ctx context.Context, jobName string, limit int) ([]ports.SweepLogEntry, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if r.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	if limit <= 0 {
		limit = 20
	}
	entries, err := r.repo.ListSweepLogs(ctx, strings.TrimSpace(jobName), limit)
	if err != nil {
		return nil, errs.Wrap(err, "list sweep logs")
	}
	return entries, nil
}
