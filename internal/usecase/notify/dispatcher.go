package notify

import (
	"context"
	"log/slog"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
)

const (
	KindExpiryAlert  = "expiry_alert"
	KindWeeklyDigest = "weekly_digest"
)

// Dispatcher formats notifications and hands them to the mailer. Delivery
// is attempted once; the boolean result is the only failure signal.
type Dispatcher struct {
	mailer  ports.Mailer
	metrics ports.JobMetrics
}

func NewDispatcher(mailer ports.Mailer, metrics ports.JobMetrics) *Dispatcher {
	if metrics == nil {
		metrics = ports.NopJobMetrics{}
	}
	return &Dispatcher{mailer: mailer, metrics: metrics}
}

func (d *Dispatcher) SendExpiryAlert(ctx context.Context, recipients []string, items []ExpiryAlertItem) bool {
	msg, err := RenderExpiryAlert(items)
	if err != nil {
		logging.Error(d.logCtx(ctx), "render expiry alert failed", slog.Any("err", errs.Loggable(err)))
		d.metrics.ObserveNotification(KindExpiryAlert, false)
		return false
	}
	return d.deliver(ctx, KindExpiryAlert, recipients, msg)
}

func (d *Dispatcher) SendWeeklyDigest(ctx context.Context, recipients []string, report WeeklyReport) bool {
	msg, err := RenderWeeklyDigest(report)
	if err != nil {
		logging.Error(d.logCtx(ctx), "render weekly digest failed", slog.Any("err", errs.Loggable(err)))
		d.metrics.ObserveNotification(KindWeeklyDigest, false)
		return false
	}
	return d.deliver(ctx, KindWeeklyDigest, recipients, msg)
}

// SendRendered delivers an already rendered message.
func (d *Dispatcher) SendRendered(ctx context.Context, kind string, recipients []string, msg Message) bool {
	return d.deliver(ctx, kind, recipients, msg)
}

func (d *Dispatcher) deliver(ctx context.Context, kind string, recipients []string, msg Message) bool {
	logCtx := d.logCtx(ctx)
	if d.mailer == nil {
		logging.Error(logCtx, "mailer is not configured", slog.String("kind", kind))
		d.metrics.ObserveNotification(kind, false)
		return false
	}
	if len(recipients) == 0 {
		logging.Warn(logCtx, "notification has no recipients", slog.String("kind", kind))
		d.metrics.ObserveNotification(kind, false)
		return false
	}

	if err := d.mailer.Send(ctx, recipients, msg.Subject, msg.HTML); err != nil {
		logging.Error(
			logCtx,
			"notification delivery failed",
			slog.String("kind", kind),
			slog.Int("recipients", len(recipients)),
			slog.Any("err", errs.Loggable(err)),
		)
		d.metrics.ObserveNotification(kind, false)
		return false
	}

	logging.Info(logCtx, "notification delivered", slog.String("kind", kind), slog.Int("recipients", len(recipients)))
	d.metrics.ObserveNotification(kind, true)
	return true
}

func (d *Dispatcher) logCtx(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "usecase.notify"))
}
