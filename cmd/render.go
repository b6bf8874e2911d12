package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	domain "fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/usecase/compliance"
)

const cliDateLayout = "2006-01-02"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)

	alarmStyles = map[domain.AlarmState]lipgloss.Style{
		domain.AlarmExpired:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		domain.AlarmApproaching: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.AlarmValid:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.AlarmNoData:      dimStyle,
	}
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("- no rows"))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderAlarm(a compliance.CategoryAlarm) string {
	if !a.Tracked {
		return dimStyle.Render("untracked")
	}
	style, ok := alarmStyles[a.State]
	if !ok {
		style = cellStyle
	}
	label := string(a.State)
	if a.Days != nil {
		label = fmt.Sprintf("%s (%s)", label, formatDays(*a.Days))
	}
	return style.Render(label)
}

func renderCompliance(w io.Writer, c compliance.VehicleCompliance) error {
	v := c.Vehicle
	lines := []string{
		titleStyle.Render("Vehicle " + v.Plate),
		dimStyle.Render(fmt.Sprintf("status=%s company=%s location=%s", v.Status, orDash(v.CompanyName), orDash(v.LocationName))),
		"",
		sectionStyle.Render("Compliance"),
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return err
	}
	return renderTable(w, []string{"Category", "Expiry", "Alarm"}, [][]string{
		{"Inspection", formatDatePtr(c.Inspection.Expiry), renderAlarm(c.Inspection)},
		{"Traffic insurance", formatDatePtr(c.TrafficInsurance.Expiry), renderAlarm(c.TrafficInsurance)},
		{"Comprehensive insurance", formatDatePtr(c.ComprehensiveInsurance.Expiry), renderAlarm(c.ComprehensiveInsurance)},
	})
}

func formatDays(days int) string {
	if days == 1 || days == -1 {
		return strconv.Itoa(days) + " day"
	}
	return strconv.Itoa(days) + " days"
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(cliDateLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// parseDateFlag parses a YYYY-MM-DD flag value. Empty means unset.
func parseDateFlag(name string, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(cliDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", domain.ErrValidation, name, raw)
	}
	return &t, nil
}
