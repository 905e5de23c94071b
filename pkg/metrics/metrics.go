package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	UploadBytes     prometheus.Histogram
	UploadsTotal    *prometheus.CounterVec
	UploadsRejected *prometheus.CounterVec
}

// New creates and registers all application metrics under the given prefix.
func New(prefix string) *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		RequestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ErrorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
		UploadBytes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_upload_bytes",
				Help:    "Size of accepted image uploads in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		UploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_uploads_total",
				Help: "Total number of image uploads",
			},
			[]string{"image_type"},
		),
		UploadsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_uploads_rejected_total",
				Help: "Uploads rejected before storage",
			},
			[]string{"reason"},
		),
	}
}
