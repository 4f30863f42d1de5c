// Package metrics exposes Prometheus counters for HTTP traffic and gallery workflow events
package metrics

import (
	"strconv"
	"studio/gallery"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	galleryEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_gallery_events_total",
			Help: "Gallery workflow events by type",
		},
		[]string{"type"},
	)

	photosDownloadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_photos_downloaded_total",
			Help: "Photos delivered through single and bulk downloads",
		},
	)

	galleryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_gallery_errors_total",
			Help: "Failed gallery operations by status and reason",
		},
		[]string{"status", "reason"},
	)
)

// Middleware records request counts and durations, labelled by route pattern
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Recorder counts published gallery events
type Recorder struct{}

func (Recorder) Publish(e gallery.Event) {
	galleryEventsTotal.WithLabelValues(string(e.Type)).Inc()
	if e.Type == gallery.EventDownload {
		photosDownloadedTotal.Add(float64(e.Count))
	}
}

// Failure counts a workflow error returned to a visitor
func Failure(err error) {
	if err == nil {
		return
	}
	galleryErrorsTotal.WithLabelValues(gallery.StatusOf(err).String(), string(gallery.ReasonOf(err))).Inc()
}
