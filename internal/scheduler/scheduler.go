package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"builderops-notify/internal/config"
	"builderops-notify/internal/notify"
)

// Runner executes a notification job by name
type Runner interface {
	Run(ctx context.Context, job string) (*notify.Report, error)
}

// EntryInfo describes one scheduled job
type EntryInfo struct {
	Job     string    `json:"job"`
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

// Scheduler triggers the notification jobs on their cron specs. It is an
// in-process alternative to the external scheduler calling the HTTP triggers.
type Scheduler struct {
	cron      *cron.Cron
	entries   map[string]cron.EntryID
	specs     map[string]string
	runner    Runner
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a scheduler for the jobs with a non-empty spec
func NewScheduler(cfg *config.SchedulerConfig, runner Runner) *Scheduler {
	specs := map[string]string{
		notify.JobDailySummary:       cfg.DailySummaryCron,
		notify.JobNotificationDigest: cfg.NotificationDigestCron,
		notify.JobRFIDeadline:        cfg.RFIDeadlineCron,
		notify.JobApprovalReminder:   cfg.ApprovalReminderCron,
	}
	for job, spec := range specs {
		if spec == "" {
			delete(specs, job)
		}
	}

	return &Scheduler{
		specs:   specs,
		entries: make(map[string]cron.EntryID),
		runner:  runner,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))
	entries := make(map[string]cron.EntryID, len(s.specs))
	for job, spec := range s.specs {
		job := job
		id, err := c.AddFunc(spec, func() { s.runJob(job) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job, err)
		}
		entries[job] = id
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.entries = entries
	s.cron.Start()
	s.isRunning = true

	logrus.WithField("jobs", len(entries)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}

	s.cancel()
	ctx := s.cron.Stop()
	s.isRunning = false
	s.mu.Unlock()

	// Jobs already running finish with a cancelled context
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) runJob(job string) {
	// Add under the lock so Stop, which clears isRunning under the write
	// lock, happens either before the check or after the Add. Wait then
	// never races a new Add.
	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.WithField("job", job).Info("Scheduler not running, skipping job")
		return
	}
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.RUnlock()
	defer s.wg.Done()

	if _, err := s.runner.Run(ctx, job); err != nil {
		logrus.WithError(err).WithField("job", job).Error("Scheduled job failed")
	}
}

// RunOnce runs job immediately, outside its schedule. The run is bound to
// ctx and is not tracked by Wait; callers drain it with their own request.
func (s *Scheduler) RunOnce(ctx context.Context, job string) (*notify.Report, error) {
	logrus.WithField("job", job).Info("Running job once")
	return s.runner.Run(ctx, job)
}

// Entries returns the configured jobs with their next and previous run
// times. Times are zero while the scheduler is stopped.
func (s *Scheduler) Entries() []EntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EntryInfo, 0, len(s.specs))
	for job, spec := range s.specs {
		info := EntryInfo{Job: job, Spec: spec}
		if s.isRunning {
			entry := s.cron.Entry(s.entries[job])
			info.NextRun = entry.Next
			info.LastRun = entry.Prev
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

// Wait waits for scheduled jobs that started before Stop to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
