package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SyncPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sync_passes_total",
			Help: "Assignment synchronization passes by outcome",
		},
		[]string{"outcome"},
	)

	AssignmentsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_assignments_written_total",
			Help: "Assignment rows written by synchronization",
		},
		[]string{"op"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exam_sync_duration_seconds",
			Help:    "Duration of assignment synchronization passes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	registerOnce sync.Once
)

// Init 可重复调用，只注册一次
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SyncPasses)
		prometheus.MustRegister(AssignmentsWritten)
		prometheus.MustRegister(SyncDuration)
	})
}

// ObserveSync 记录一次同步的结果
func ObserveSync(outcome string, duration time.Duration, inserted, updated int) {
	SyncPasses.WithLabelValues(outcome).Inc()
	SyncDuration.Observe(duration.Seconds())
	if inserted > 0 {
		AssignmentsWritten.WithLabelValues("insert").Add(float64(inserted))
	}
	if updated > 0 {
		AssignmentsWritten.WithLabelValues("update").Add(float64(updated))
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
