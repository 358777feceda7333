package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "share_uploads_total",
		Help: "Accepted uploads by plan",
	}, []string{"plan"})

	uploadRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "share_upload_rejections_total",
		Help: "Rejected uploads by reason",
	}, []string{"reason"})

	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_sweep_runs_total",
		Help: "Expiry sweeper invocations",
	})

	sweepFilesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_sweep_files_deleted_total",
		Help: "Expired files removed by the sweeper",
	})

	sweepSubscriptionsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_sweep_subscriptions_deleted_total",
		Help: "Expired subscriptions removed by the sweeper",
	})

	sweepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "share_sweep_failures_total",
		Help: "Failed sweeper steps",
	}, []string{"step"})

	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "share_sweep_duration_seconds",
		Help:    "Duration of one sweeper run",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	orphansRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_reconcile_orphans_removed_total",
		Help: "Objects without a file row removed by reconciliation",
	})
)
