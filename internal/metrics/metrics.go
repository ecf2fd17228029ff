package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Runs            *prometheus.CounterVec
	EmailsSent      *prometheus.CounterVec
	SendFailures    *prometheus.CounterVec
	ProjectsSkipped *prometheus.CounterVec
	ProjectFailures *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	WatchRenewals   *prometheus.CounterVec
}

// NewMetrics creates the notification metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_runs_total",
			Help: "Total number of notification job runs",
		}, []string{"job"}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_emails_sent_total",
			Help: "Total number of notification emails sent",
		}, []string{"job"}),
		SendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_send_failures_total",
			Help: "Total number of failed notification sends by kind",
		}, []string{"job", "kind"}),
		ProjectsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_projects_skipped_total",
			Help: "Total number of projects skipped by reason",
		}, []string{"job", "reason"}),
		ProjectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_project_failures_total",
			Help: "Total number of projects whose notification could not be prepared",
		}, []string{"job"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "builderops_notify_run_duration_seconds",
			Help:    "Time spent running a notification job",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		WatchRenewals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "builderops_notify_watch_renewals_total",
			Help: "Total number of mailbox watch renewals by result",
		}, []string{"result"}),
	}
}
