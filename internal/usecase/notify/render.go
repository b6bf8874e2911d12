package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
)

const (
	ExpiryAlertSubject = "Urgent: expired vehicles detected"
	footer             = "This email was generated automatically by the fleetcheck compliance service."
	dateLayout         = "2006-01-02"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("notify").Funcs(template.FuncMap{
	"days":     formatDays,
	"dayColor": dayColor,
	"intPtr":   func(v int) *int { return &v },
	"date":     func(t time.Time) string { return t.Format(dateLayout) },
	"orDash":   orDash,
	"subType":  subTypeLabel,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// ExpiryAlertItem is one row of the sweep alert. Nil day counts mean the
// category is untracked or has no data.
type ExpiryAlertItem struct {
	Plate          string
	Location       string
	InspectionDays *int
	InsuranceDays  *int
}

type DigestItem struct {
	Plate    string
	Company  string
	Location string
	SubType  domain.InsuranceSubType
	Expiry   time.Time
	Days     int
}

type WeeklyReport struct {
	GeneratedAt           time.Time
	WindowDays            int
	InspectionOverdue     []DigestItem
	InspectionApproaching []DigestItem
	InsuranceOverdue      []DigestItem
	InsuranceApproaching  []DigestItem
}

func (r WeeklyReport) Total() int {
	return len(r.InspectionOverdue) + len(r.InspectionApproaching) + len(r.InsuranceOverdue) + len(r.InsuranceApproaching)
}

func (r WeeklyReport) Empty() bool {
	return r.Total() == 0
}

type Message struct {
	Subject string
	HTML    string
}

type digestTable struct {
	Title       string
	Color       string
	WithSubType bool
	Items       []DigestItem
}

func RenderExpiryAlert(items []ExpiryAlertItem) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "expiry_alert.html.tmpl", map[string]any{
		"Items":  items,
		"Footer": footer,
	}); err != nil {
		return Message{}, errs.Wrap(err, "render expiry alert")
	}
	return Message{Subject: ExpiryAlertSubject, HTML: buf.String()}, nil
}

func RenderWeeklyDigest(report WeeklyReport) (Message, error) {
	window := report.WindowDays
	if window <= 0 {
		window = domain.ApproachingWindowDays
	}

	data := map[string]any{
		"GeneratedAt": report.GeneratedAt,
		"WindowDays":  window,
		"Empty":       report.Empty(),
		"Footer":      footer,
		"Tables": map[string]digestTable{
			"InspectionOverdue":     {Title: "Overdue inspections", Color: "#dc2626", Items: report.InspectionOverdue},
			"InspectionApproaching": {Title: "Inspections due soon", Color: "#d97706", Items: report.InspectionApproaching},
			"InsuranceOverdue":      {Title: "Overdue insurance", Color: "#dc2626", WithSubType: true, Items: report.InsuranceOverdue},
			"InsuranceApproaching":  {Title: "Insurance due soon", Color: "#d97706", WithSubType: true, Items: report.InsuranceApproaching},
		},
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "weekly_digest.html.tmpl", data); err != nil {
		return Message{}, errs.Wrap(err, "render weekly digest")
	}

	subject := fmt.Sprintf("Weekly compliance report %s", report.GeneratedAt.Format(dateLayout))
	if report.Empty() {
		subject += ": all vehicles up to date"
	} else {
		subject += fmt.Sprintf(": %d overdue, %d due soon",
			len(report.InspectionOverdue)+len(report.InsuranceOverdue),
			len(report.InspectionApproaching)+len(report.InsuranceApproaching))
	}
	return Message{Subject: subject, HTML: buf.String()}, nil
}

func formatDays(days *int) string {
	if days == nil {
		return "N/A"
	}
	if *days == 1 || *days == -1 {
		return fmt.Sprintf("%d day", *days)
	}
	return fmt.Sprintf("%d days", *days)
}

func dayColor(days *int) string {
	if days != nil && *days < 0 {
		return "red"
	}
	return "inherit"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func subTypeLabel(st domain.InsuranceSubType) string {
	switch st {
	case domain.SubTypeTraffic:
		return "Mandatory traffic"
	case domain.SubTypeComprehensive:
		return "Comprehensive"
	case domain.SubTypeSupplementaryLiability:
		return "Supplementary liability"
	default:
		return string(st)
	}
}
