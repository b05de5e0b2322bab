// Package metrics provides Prometheus metrics for the comment tree service.
// Metrics are grouped by HTTP traffic, comment tree changes, likes, reconciliation and export.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comment_tree"

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Comment tree metrics
	CommentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "created_total",
			Help:      "Total number of comments created by kind (root or reply)",
		},
		[]string{"kind"},
	)

	CommentsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "deleted_total",
			Help:      "Total number of comments removed by subtree deletion, by kind",
		},
		[]string{"kind"},
	)

	SubtreeSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "deleted_subtree_size",
			Help:      "Number of comments removed per delete request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Like metrics
	LikesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "likes",
			Name:      "total",
			Help:      "Like toggles by target (article or comment), action (like or unlike) and result",
		},
		[]string{"target", "action", "result"},
	)

	// Reconciliation metrics
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Article reconciliations by result",
		},
		[]string{"result"},
	)

	ReconcileRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "comments_repaired_total",
			Help:      "Comments whose stored counters were rewritten by reconciliation",
		},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "streams_total",
			Help:      "Thread exports by format and result",
		},
		[]string{"format", "result"},
	)

	ExportedComments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "comments_total",
			Help:      "Comments written by thread exports",
		},
		[]string{"format"},
	)
)

func kind(root bool) string {
	if root {
		return "root"
	}
	return "reply"
}

// ObserveCommentCreated records a new root comment or reply
func ObserveCommentCreated(root bool) {
	CommentsCreated.WithLabelValues(kind(root)).Inc()
}

// ObserveSubtreeDeleted records the outcome of one delete request
func ObserveSubtreeDeleted(roots, replies int) {
	if roots > 0 {
		CommentsDeleted.WithLabelValues("root").Add(float64(roots))
	}
	if replies > 0 {
		CommentsDeleted.WithLabelValues("reply").Add(float64(replies))
	}
	SubtreeSize.Observe(float64(roots + replies))
}

// ObserveLike records a like toggle
func ObserveLike(target, action, result string) {
	LikesTotal.WithLabelValues(target, action, result).Inc()
}

// ObserveReconcile records a reconciliation outcome
func ObserveReconcile(err error, repaired int) {
	if err != nil {
		ReconcileRuns.WithLabelValues("error").Inc()
		return
	}
	ReconcileRuns.WithLabelValues("success").Inc()
	ReconcileRepairs.Add(float64(repaired))
}

// ObserveExport records a finished thread export
func ObserveExport(format string, err error, count int) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ExportsTotal.WithLabelValues(format, result).Inc()
	if count > 0 {
		ExportedComments.WithLabelValues(format).Add(float64(count))
	}
}

// Timer is a helper for measuring operation duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer was created
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}
