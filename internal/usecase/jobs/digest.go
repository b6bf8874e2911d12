package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"fleetcheck/internal/bootstrap/logging"
	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/notify"
)

const digestContentType = "text/html; charset=utf-8"

var digestExcludedStatuses = []domain.VehicleStatus{
	domain.StatusParked,
	domain.StatusMaintenance,
}

func (r *Runner) sendWeeklyDigest(ctx context.Context) (Summary, error) {
	report, err := r.buildWeeklyReport(ctx, r.now())
	if err != nil {
		return Summary{}, err
	}

	recipients, err := r.digestRecipients(ctx)
	if err != nil {
		return Summary{}, err
	}

	msg, err := notify.RenderWeeklyDigest(report)
	if err != nil {
		return Summary{}, errs.Wrap(err, "render weekly digest")
	}

	notified := r.dispatcher.SendRendered(ctx, notify.KindWeeklyDigest, recipients, msg)
	outcome := "notification failed"
	if len(recipients) == 0 {
		outcome = "no recipients"
	} else if notified {
		outcome = "notification sent"
	}

	message := fmt.Sprintf("weekly report with %d items for %d recipients, %s", report.Total(), len(recipients), outcome)
	location, archiveErr := r.archiveDigest(ctx, report.GeneratedAt, msg)
	if archiveErr != nil {
		message += ", archive failed"
	}

	return Summary{
		Message:         message,
		Affected:        report.Total(),
		Recipients:      len(recipients),
		Notified:        notified,
		ArchiveLocation: location,
	}, nil
}

// BuildWeeklyReport computes the digest tables without sending anything.
func (r *Runner) BuildWeeklyReport(ctx context.Context) (notify.WeeklyReport, error) {
	if ctx == nil {
		return notify.WeeklyReport{}, errors.New("context is required")
	}
	if r.repo == nil {
		return notify.WeeklyReport{}, errors.New("fleet repository is required")
	}
	return r.buildWeeklyReport(ctx, r.now())
}

func (r *Runner) buildWeeklyReport(ctx context.Context, now time.Time) (notify.WeeklyReport, error) {
	horizon := now.AddDate(0, 0, domain.ApproachingWindowDays)
	report := notify.WeeklyReport{GeneratedAt: now, WindowDays: domain.ApproachingWindowDays}

	vehicles, err := r.repo.ListVehicles(ctx, ports.VehicleFilter{ExcludeStatuses: digestExcludedStatuses})
	if err != nil {
		return notify.WeeklyReport{}, errs.Wrap(err, "list digest vehicles")
	}
	for _, v := range vehicles {
		if !v.InspectionTracked || v.InspectionExpiry == nil {
			continue
		}
		item := digestItem(v, "", *v.InspectionExpiry, now)
		switch {
		case v.InspectionExpiry.Before(now):
			report.InspectionOverdue = append(report.InspectionOverdue, item)
		case !v.InspectionExpiry.After(horizon):
			report.InspectionApproaching = append(report.InspectionApproaching, item)
		}
	}

	dues, err := r.repo.ListInsurancesDue(ctx, ports.InsuranceDueFilter{
		ExcludeStatuses:  digestExcludedStatuses,
		ValidUntilBefore: horizon,
	})
	if err != nil {
		return notify.WeeklyReport{}, errs.Wrap(err, "list insurances due")
	}
	for _, due := range dues {
		item := digestItem(due.Vehicle, due.Insurance.SubType, due.Insurance.ValidUntil, now)
		if due.Insurance.ValidUntil.Before(now) {
			report.InsuranceOverdue = append(report.InsuranceOverdue, item)
		} else {
			report.InsuranceApproaching = append(report.InsuranceApproaching, item)
		}
	}

	sortDigestItems(report.InspectionOverdue)
	sortDigestItems(report.InspectionApproaching)
	sortDigestItems(report.InsuranceOverdue)
	sortDigestItems(report.InsuranceApproaching)
	return report, nil
}

func (r *Runner) digestRecipients(ctx context.Context) ([]string, error) {
	users, err := r.users.ListActiveUsersByRoles(ctx, []domain.Role{domain.RoleSuperAdmin, domain.RoleCompanyManager})
	if err != nil {
		return nil, errs.Wrap(err, "list digest recipients")
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return domain.MergeRecipients(emails, []string{r.cfg.AdminEmail}), nil
}

// archiveDigest stores the rendered digest. The returned error is logged
// here and only annotates the run message.
func (r *Runner) archiveDigest(ctx context.Context, generatedAt time.Time, msg notify.Message) (string, error) {
	if r.archive == nil {
		return "", nil
	}
	name := fmt.Sprintf("weekly/%s.html", generatedAt.UTC().Format("2006-01-02T150405Z"))
	location, err := r.archive.Put(ctx, name, digestContentType, []byte(msg.HTML))
	if err != nil {
		logging.Warn(ctx, "archive weekly digest failed", slog.Any("err", errs.Loggable(err)))
		return "", err
	}
	return location, nil
}

func digestItem(v ports.Vehicle, subType domain.InsuranceSubType, expiry time.Time, now time.Time) notify.DigestItem {
	days := 0
	if d := domain.DaysRemaining(&expiry, now); d != nil {
		days = *d
	}
	return notify.DigestItem{
		Plate:    v.Plate,
		Company:  v.CompanyName,
		Location: v.LocationName,
		SubType:  subType,
		Expiry:   expiry,
		Days:     days,
	}
}

func sortDigestItems(items []notify.DigestItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Expiry.Equal(items[j].Expiry) {
			return items[i].Expiry.Before(items[j].Expiry)
		}
		return items[i].Plate < items[j].Plate
	})
}
