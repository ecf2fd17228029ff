package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"builderops-notify/internal/config"
	"builderops-notify/internal/digest"
	"builderops-notify/internal/email"
	"builderops-notify/internal/metrics"
	"builderops-notify/internal/model"
	"builderops-notify/internal/render"
	"builderops-notify/internal/runstore"
)

const dateLayout = "2006-01-02"

// Repository is the data the jobs select from
type Repository interface {
	DailySummaryProjects(ctx context.Context) ([]model.Project, error)
	DigestIntervalProjects(ctx context.Context) ([]model.Project, error)
	ActiveProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id uint) (*model.Project, error)
	ProjectAdmins(ctx context.Context, projectID uint) ([]model.User, error)
	TouchLastDigestSent(ctx context.Context, projectID uint, at time.Time) error
	RFIsNeedingReminder(ctx context.Context, projectID uint, dueBefore time.Time) ([]model.RFI, error)
	StalePendingSubmissions(ctx context.Context, projectID uint, olderThan time.Time) ([]model.ActivityRecord, error)
}

// SummaryBuilder assembles a project's summary for a window
type SummaryBuilder interface {
	Build(ctx context.Context, projectID uint, w digest.Window) (*digest.DailySummary, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time { return time.Now().UTC() }

type summaryRenderer func(s *digest.DailySummary, projectName, lang, baseURL string) (string, string, error)

// Dispatcher runs the notification jobs. Runs are serialized; projects and
// recipients are processed one at a time in selection order.
type Dispatcher struct {
	repo    Repository
	builder SummaryBuilder
	sender  email.Sender
	watcher email.Watcher
	runs    runstore.Store
	metrics *metrics.Metrics
	clock   Clock
	cfg     config.DigestConfig
	mu      sync.Mutex
}

// NewDispatcher creates a dispatcher
func NewDispatcher(repo Repository, builder SummaryBuilder, sender email.Sender, runs runstore.Store, m *metrics.Metrics, cfg config.DigestConfig) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		builder: builder,
		sender:  sender,
		runs:    runs,
		metrics: m,
		clock:   SystemClock{},
		cfg:     cfg,
	}
}

// SetWatcher sets the mailbox watch renewed before each daily summary run
func (d *Dispatcher) SetWatcher(w email.Watcher) {
	d.watcher = w
}

// SetClock replaces the clock
func (d *Dispatcher) SetClock(c Clock) {
	d.clock = c
}

// Now returns the dispatcher's current time
func (d *Dispatcher) Now() time.Time {
	return d.clock.Now()
}

// Run executes job by name with its default arguments
func (d *Dispatcher) Run(ctx context.Context, job string) (*Report, error) {
	switch job {
	case JobDailySummary:
		return d.RunDailySummary(ctx, d.clock.Now())
	case JobNotificationDigest:
		return d.RunNotificationDigest(ctx)
	case JobRFIDeadline:
		return d.RunRFIDeadlineCheck(ctx)
	case JobApprovalReminder:
		return d.RunApprovalReminderCheck(ctx)
	default:
		return nil, fmt.Errorf("unknown job %q", job)
	}
}

// RunDailySummary sends the summary of the UTC day containing date to the
// admins of every opted-in active project
func (d *Dispatcher) RunDailySummary(ctx context.Context, date time.Time) (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := digest.DayWindow(date)
	report := d.newReport(JobDailySummary, w.Start)

	d.renewWatch(ctx)

	projects, err := d.repo.DailySummaryProjects(ctx)
	if err != nil {
		return nil, err
	}
	report.TotalProjects = len(projects)

	for i := range projects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d.dispatchSummary(ctx, report, &projects[i], w, render.DailySummary)
	}

	d.finish(ctx, report)
	return report, nil
}

// RunNotificationDigest sends the interval digest to projects whose interval
// has elapsed. last_digest_sent_at advances for every dispatched project even
// when individual sends fail.
func (d *Dispatcher) RunNotificationDigest(ctx context.Context) (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	report := d.newReport(JobNotificationDigest, now)

	projects, err := d.repo.DigestIntervalProjects(ctx)
	if err != nil {
		return nil, err
	}

	var due []model.Project
	for _, p := range projects {
		if p.DigestDue(now) {
			due = append(due, p)
		}
	}
	report.TotalProjects = len(due)

	for i := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p := &due[i]
		w := digest.Window{Start: p.DigestWindowStart(now), End: now}
		if !d.dispatchSummary(ctx, report, p, w, render.NotificationDigest) {
			continue
		}
		if err := d.repo.TouchLastDigestSent(ctx, p.ID, now); err != nil {
			logrus.WithError(err).WithField("project_id", p.ID).Error("Failed to record digest time")
		}
	}

	d.finish(ctx, report)
	return report, nil
}

// dispatchSummary builds and sends one project's summary. It reports whether
// the project reached the send stage.
func (d *Dispatcher) dispatchSummary(ctx context.Context, report *Report, p *model.Project, w digest.Window, renderFn summaryRenderer) bool {
	log := logrus.WithFields(logrus.Fields{"job": report.Job, "project_id": p.ID})

	summary, err := d.builder.Build(ctx, p.ID, w)
	if err != nil {
		d.projectFailed(report, p, err)
		return false
	}
	if !summary.HasActivity {
		log.Debug("No activity, skipping project")
		d.skip(report, p, ReasonNoActivity)
		return false
	}

	admins, err := d.repo.ProjectAdmins(ctx, p.ID)
	if err != nil {
		d.projectFailed(report, p, err)
		return false
	}
	if len(admins) == 0 {
		log.Info("Project has no active admins, skipping")
		d.skip(report, p, ReasonNoAdmins)
		return false
	}

	for _, u := range admins {
		lang := render.ResolveLanguage(u.Language)
		subject, body, err := renderFn(summary, p.Name, lang, d.cfg.BaseURL)
		if err != nil {
			d.record(report, p, u.Email, lang, err)
			continue
		}
		d.record(report, p, u.Email, lang, d.sender.SendNotification(ctx, u.Email, subject, body))
	}
	return true
}

// RunRFIDeadlineCheck reminds assignees about RFIs that are overdue or due
// within the configured number of days. Unassigned RFIs, or RFIs assigned to
// inactive users, go to the project admins.
func (d *Dispatcher) RunRFIDeadlineCheck(ctx context.Context) (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	today := digest.DayWindow(now).Start
	dueBefore := today.AddDate(0, 0, d.cfg.RFIReminderDays+1)
	report := d.newReport(JobRFIDeadline, today)

	projects, err := d.repo.ActiveProjects(ctx)
	if err != nil {
		return nil, err
	}
	report.TotalProjects = len(projects)

	for i := range projects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d.remindRFIs(ctx, report, &projects[i], today, dueBefore)
	}

	d.finish(ctx, report)
	return report, nil
}

func (d *Dispatcher) remindRFIs(ctx context.Context, report *Report, p *model.Project, today, dueBefore time.Time) {
	rfis, err := d.repo.RFIsNeedingReminder(ctx, p.ID, dueBefore)
	if err != nil {
		d.projectFailed(report, p, err)
		return
	}
	if len(rfis) == 0 {
		d.skip(report, p, ReasonNothingDue)
		return
	}

	var order []uint
	recipients := make(map[uint]model.User)
	items := make(map[uint][]render.RFIItem)
	var admins []model.User
	adminsLoaded := false

	for _, rfi := range rfis {
		if rfi.DueDate == nil {
			continue
		}
		item := render.RFIItem{
			Number:  rfi.Number,
			Subject: rfi.Subject,
			DueDate: *rfi.DueDate,
			Overdue: rfi.Overdue(today),
		}

		var targets []model.User
		if rfi.AssignedTo != nil && rfi.AssignedTo.IsActive {
			targets = append(targets, *rfi.AssignedTo)
		} else {
			if !adminsLoaded {
				if admins, err = d.repo.ProjectAdmins(ctx, p.ID); err != nil {
					d.projectFailed(report, p, err)
					return
				}
				adminsLoaded = true
			}
			targets = admins
		}

		for _, u := range targets {
			if _, ok := recipients[u.ID]; !ok {
				recipients[u.ID] = u
				order = append(order, u.ID)
			}
			items[u.ID] = append(items[u.ID], item)
		}
	}

	if len(order) == 0 {
		d.skip(report, p, ReasonNoAdmins)
		return
	}

	for _, id := range order {
		u := recipients[id]
		lang := render.ResolveLanguage(u.Language)
		subject, body, err := render.RFIReminder(p.ID, p.Name, lang, d.cfg.BaseURL, items[id])
		if err != nil {
			d.record(report, p, u.Email, lang, err)
			continue
		}
		d.record(report, p, u.Email, lang, d.sender.SendNotification(ctx, u.Email, subject, body))
	}
}

// RunApprovalReminderCheck reminds project admins about equipment and
// material submissions pending review longer than the configured days
func (d *Dispatcher) RunApprovalReminderCheck(ctx context.Context) (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	olderThan := now.AddDate(0, 0, -d.cfg.ApprovalReminderDays)
	report := d.newReport(JobApprovalReminder, now)

	projects, err := d.repo.ActiveProjects(ctx)
	if err != nil {
		return nil, err
	}
	report.TotalProjects = len(projects)

	for i := range projects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d.remindApprovals(ctx, report, &projects[i], olderThan)
	}

	d.finish(ctx, report)
	return report, nil
}

func (d *Dispatcher) remindApprovals(ctx context.Context, report *Report, p *model.Project, olderThan time.Time) {
	records, err := d.repo.StalePendingSubmissions(ctx, p.ID, olderThan)
	if err != nil {
		d.projectFailed(report, p, err)
		return
	}
	if len(records) == 0 {
		d.skip(report, p, ReasonNothingDue)
		return
	}

	admins, err := d.repo.ProjectAdmins(ctx, p.ID)
	if err != nil {
		d.projectFailed(report, p, err)
		return
	}
	if len(admins) == 0 {
		d.skip(report, p, ReasonNoAdmins)
		return
	}

	items := make([]render.PendingItem, 0, len(records))
	for _, r := range records {
		items = append(items, render.PendingItem{
			Table: r.TableName(),
			Name:  r.DisplayName(),
			Since: r.GetUpdatedAt(),
		})
	}

	for _, u := range admins {
		lang := render.ResolveLanguage(u.Language)
		subject, body, err := render.ApprovalReminder(p.ID, p.Name, lang, d.cfg.BaseURL, d.cfg.ApprovalReminderDays, items)
		if err != nil {
			d.record(report, p, u.Email, lang, err)
			continue
		}
		d.record(report, p, u.Email, lang, d.sender.SendNotification(ctx, u.Email, subject, body))
	}
}

// Preview renders a project's daily summary without sending it
func (d *Dispatcher) Preview(ctx context.Context, projectID uint, date time.Time, lang string) (subject, body string, summary *digest.DailySummary, err error) {
	p, err := d.repo.GetProject(ctx, projectID)
	if err != nil {
		return "", "", nil, err
	}
	summary, err = d.builder.Build(ctx, p.ID, digest.DayWindow(date))
	if err != nil {
		return "", "", nil, err
	}
	subject, body, err = render.DailySummary(summary, p.Name, lang, d.cfg.BaseURL)
	if err != nil {
		return "", "", nil, err
	}
	return subject, body, summary, nil
}

func (d *Dispatcher) newReport(job string, date time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Job:         job,
		SummaryDate: date.UTC().Format(dateLayout),
		Results:     []Result{},
		StartedAt:   d.clock.Now(),
	}
}

// record classifies a send outcome for one recipient
func (d *Dispatcher) record(report *Report, p *model.Project, to, lang string, err error) {
	res := Result{Project: p.Name, Email: to, Language: lang, Status: StatusSent}
	log := logrus.WithFields(logrus.Fields{
		"job":        report.Job,
		"project_id": p.ID,
		"to":         to,
	})

	switch {
	case err == nil:
		d.metrics.EmailsSent.WithLabelValues(report.Job).Inc()
		log.Info("Notification sent")
	case email.IsAuthError(err):
		res.Status = StatusAuthError
		res.Error = err.Error()
		d.metrics.SendFailures.WithLabelValues(report.Job, string(StatusAuthError)).Inc()
		log.WithError(err).Error("Email authentication failed, sender credentials need attention")
	default:
		res.Status = StatusError
		res.Error = err.Error()
		d.metrics.SendFailures.WithLabelValues(report.Job, string(StatusError)).Inc()
		log.WithError(err).Warn("Failed to send notification")
	}
	report.add(res)
}

func (d *Dispatcher) skip(report *Report, p *model.Project, reason string) {
	d.metrics.ProjectsSkipped.WithLabelValues(report.Job, reason).Inc()
	report.add(Result{Project: p.Name, Status: StatusSkipped, Reason: reason})
}

func (d *Dispatcher) projectFailed(report *Report, p *model.Project, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"job":        report.Job,
		"project_id": p.ID,
	}).Error("Failed to prepare project notification")
	d.metrics.ProjectFailures.WithLabelValues(report.Job).Inc()
	report.add(Result{Project: p.Name, Status: StatusError, Error: err.Error()})
}

func (d *Dispatcher) renewWatch(ctx context.Context) {
	if d.watcher == nil {
		return
	}
	if err := d.watcher.RenewWatch(ctx); err != nil {
		d.metrics.WatchRenewals.WithLabelValues("failure").Inc()
		logrus.WithError(err).Warn("Failed to renew mailbox watch")
		return
	}
	d.metrics.WatchRenewals.WithLabelValues("success").Inc()
}

func (d *Dispatcher) finish(ctx context.Context, report *Report) {
	report.FinishedAt = d.clock.Now()
	d.metrics.Runs.WithLabelValues(report.Job).Inc()
	d.metrics.RunDuration.WithLabelValues(report.Job).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if err := d.runs.Save(ctx, report.Job, report); err != nil {
		logrus.WithError(err).WithField("job", report.Job).Warn("Failed to store run report")
	}

	logrus.WithFields(logrus.Fields{
		"job":            report.Job,
		"run_id":         report.RunID,
		"summary_date":   report.SummaryDate,
		"total_projects": report.TotalProjects,
		"sent":           report.Sent,
		"skipped":        report.Skipped,
		"errors":         report.Errors,
		"auth_errors":    report.AuthErrors,
	}).Info("Notification run completed")
}
