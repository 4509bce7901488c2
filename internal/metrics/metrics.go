// Package metrics exposes the board's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	commentsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_comments_created_total",
		Help: "Comments created, by kind (root or reply).",
	}, []string{"kind"})

	commentsDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_comments_deleted_total",
		Help: "Comments soft-deleted, by who deleted them.",
	}, []string{"by"})

	nestingRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_nesting_rejections_total",
		Help: "Replies refused because they would exceed the maximum depth.",
	})

	moderationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_moderation_actions_total",
		Help: "Moderation actions recorded, by action type.",
	}, []string{"action_type"})

	reportTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_report_transitions_total",
		Help: "Reports entering each status.",
	}, []string{"status"})

	auditAppendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_audit_appends_total",
		Help: "Audit chain appends by result.",
	}, []string{"result"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		requestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns a Gin handler that serves Prometheus metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordCommentCreated counts a new root comment or reply.
func RecordCommentCreated(kind string) { commentsCreatedTotal.WithLabelValues(kind).Inc() }

// RecordCommentDeleted counts a soft delete by "author" or "moderator".
func RecordCommentDeleted(by string) { commentsDeletedTotal.WithLabelValues(by).Inc() }

// RecordNestingRejected counts a reply refused for depth.
func RecordNestingRejected() { nestingRejectionsTotal.Inc() }

// RecordModerationAction counts a recorded moderation action.
func RecordModerationAction(actionType string) {
	moderationActionsTotal.WithLabelValues(actionType).Inc()
}

// RecordReportTransition counts a report entering status.
func RecordReportTransition(status string) {
	reportTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordAuditAppend records an audit chain append attempt.
func RecordAuditAppend(success bool) {
	if success {
		auditAppendsTotal.WithLabelValues("success").Inc()
	} else {
		auditAppendsTotal.WithLabelValues("failure").Inc()
	}
}
