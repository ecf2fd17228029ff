package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"builderops-notify/internal/digest"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// page carries what the shared header and footer need
type page struct {
	Lang        string
	Dir         string
	Align       string
	L           map[string]string
	Title       string
	Intro       string
	ProjectName string
	Date        string
	ProjectURL  string
}

func newPage(lang, titleKey, projectName string) page {
	lang = ResolveLanguage(lang)
	align := "left"
	if Direction(lang) == "rtl" {
		align = "right"
	}
	return page{
		Lang:        lang,
		Dir:         Direction(lang),
		Align:       align,
		L:           labels(lang),
		Title:       Translate(titleKey, lang),
		ProjectName: projectName,
	}
}

type statRow struct {
	Label string
	Value int64
}

type section struct {
	Title string
	Rows  []statRow
}

type meetingRow struct {
	When     string
	Title    string
	Location string
}

type summaryPage struct {
	page
	Overview         []statRow
	Sections         []section
	PendingApprovals int64
	Meetings         []meetingRow
	Progress         string
	ProgressWidth    string
}

// DailySummary renders the daily summary email for one recipient
func DailySummary(s *digest.DailySummary, projectName, lang, baseURL string) (subject, body string, err error) {
	return renderSummary("daily", s, projectName, lang, baseURL)
}

// NotificationDigest renders the interval digest email. It shares the daily
// summary layout.
func NotificationDigest(s *digest.DailySummary, projectName, lang, baseURL string) (subject, body string, err error) {
	return renderSummary("digest", s, projectName, lang, baseURL)
}

func renderSummary(kind string, s *digest.DailySummary, projectName, lang, baseURL string) (string, string, error) {
	p := summaryPage{page: newPage(lang, kind+".title", projectName)}
	lang = p.Lang
	p.Intro = Translate(kind+".intro", lang)
	p.Date = s.SummaryDate.UTC().Format(dateLayout)
	p.ProjectURL = ProjectURL(baseURL, s.ProjectID)

	for _, e := range s.AuditEntries {
		label := translateOr("entity."+e.EntityType, lang, e.EntityType) + " " +
			translateOr("action."+e.Action, lang, e.Action)
		p.Overview = append(p.Overview, statRow{Label: label, Value: e.Count})
	}

	t := func(key string) string { return Translate(key, lang) }
	for _, a := range []struct {
		key   string
		stats digest.ApprovalStats
	}{{"section.equipment", s.Equipment}, {"section.materials", s.Materials}} {
		if a.stats.IsZero() {
			continue
		}
		p.Sections = append(p.Sections, section{Title: t(a.key), Rows: []statRow{
			{t("stat.created"), a.stats.Created},
			{t("stat.approved"), a.stats.Approved},
			{t("stat.rejected"), a.stats.Rejected},
		}})
	}
	if !s.Inspections.IsZero() {
		p.Sections = append(p.Sections, section{Title: t("section.inspections"), Rows: []statRow{
			{t("stat.completed"), s.Inspections.Completed},
			{t("stat.findings"), s.Inspections.Findings},
		}})
	}
	if !s.RFIs.IsZero() {
		p.Sections = append(p.Sections, section{Title: t("section.rfis"), Rows: []statRow{
			{t("stat.opened"), s.RFIs.Opened},
			{t("stat.answered"), s.RFIs.Answered},
			{t("stat.closed"), s.RFIs.Closed},
			{t("stat.overdue"), s.RFIs.Overdue},
		}})
	}
	if !s.Defects.IsZero() {
		p.Sections = append(p.Sections, section{Title: t("section.defects"), Rows: []statRow{
			{t("stat.new"), s.Defects.New},
			{t("stat.resolved"), s.Defects.Resolved},
			{t("stat.critical_open"), s.Defects.CriticalOpen},
		}})
	}

	p.PendingApprovals = s.PendingApprovals
	for _, m := range s.UpcomingMeetings {
		p.Meetings = append(p.Meetings, meetingRow{
			When:     m.ScheduledAt.UTC().Format(dateTimeLayout),
			Title:    m.Title,
			Location: m.Location,
		})
	}

	p.Progress = FormatProgress(s.OverallProgress)
	p.ProgressWidth = FormatProgress(clamp(s.OverallProgress, 0, 100))

	subject := fmt.Sprintf(t(kind+".subject"), html.EscapeString(projectName), p.Date)
	body, err := execute("daily_summary.html", p)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

// RFIItem is one RFI listed in a deadline reminder
type RFIItem struct {
	Number  string
	Subject string
	DueDate time.Time
	Overdue bool
}

type rfiRow struct {
	Number  string
	Subject string
	Due     string
	Overdue bool
}

type rfiPage struct {
	page
	RFIs []rfiRow
}

// RFIReminder renders the RFI deadline reminder
func RFIReminder(projectID uint, projectName, lang, baseURL string, items []RFIItem) (subject, body string, err error) {
	p := rfiPage{page: newPage(lang, "rfi.title", projectName)}
	p.Intro = Translate("rfi.intro", p.Lang)
	p.ProjectURL = ProjectURL(baseURL, projectID)
	for _, it := range items {
		p.RFIs = append(p.RFIs, rfiRow{
			Number:  it.Number,
			Subject: it.Subject,
			Due:     it.DueDate.UTC().Format(dateLayout),
			Overdue: it.Overdue,
		})
	}

	subject = fmt.Sprintf(Translate("rfi.subject", p.Lang), html.EscapeString(projectName))
	if body, err = execute("rfi_reminder.html", p); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

// PendingItem is one submission listed in an approval reminder
type PendingItem struct {
	Table string
	Name  string
	Since time.Time
}

type pendingRow struct {
	Kind  string
	Name  string
	Since string
}

type approvalPage struct {
	page
	Items []pendingRow
}

// ApprovalReminder renders the reminder for submissions pending longer than days
func ApprovalReminder(projectID uint, projectName, lang, baseURL string, days int, items []PendingItem) (subject, body string, err error) {
	p := approvalPage{page: newPage(lang, "approval.title", projectName)}
	p.Intro = fmt.Sprintf(Translate("approval.intro", p.Lang), days)
	p.ProjectURL = ProjectURL(baseURL, projectID)
	for _, it := range items {
		p.Items = append(p.Items, pendingRow{
			Kind:  translateOr("entity."+it.Table, p.Lang, it.Table),
			Name:  it.Name,
			Since: it.Since.UTC().Format(dateLayout),
		})
	}

	subject = fmt.Sprintf(Translate("approval.subject", p.Lang), html.EscapeString(projectName))
	if body, err = execute("approval_reminder.html", p); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

// ProjectURL links to the project in the web application. It is empty when
// no base URL is configured.
func ProjectURL(baseURL string, projectID uint) string {
	if baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/projects/%d", strings.TrimRight(baseURL, "/"), projectID)
}

// FormatProgress formats a percentage with one decimal
func FormatProgress(p float64) string {
	return fmt.Sprintf("%.1f", p)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
