// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rollcall"

// Own registry keeps the scrape output limited to service metrics.
var registry = prometheus.NewRegistry()

var (
	enrollments = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Number of successful student enrollments.",
	})

	recognitions = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recognitions_total",
		Help:      "Number of recognition requests processed.",
	})

	recognitionSeconds = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recognition_seconds",
		Help:      "End-to-end recognition latency including face detection.",
		Buckets:   prometheus.DefBuckets,
	})

	matches = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_total",
		Help:      "Probe embeddings by match outcome.",
	}, []string{"outcome"})

	attendanceSaves = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_saves_total",
		Help:      "Number of attendance records saved.",
	})

	gallerySubjects = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gallery_subjects",
		Help:      "Subjects currently enrolled in the gallery.",
	})

	galleryEmbeddings = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gallery_embeddings",
		Help:      "Embeddings currently stored in the gallery.",
	})

	attendanceRecords = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "attendance_records",
		Help:      "Attendance records currently held in memory.",
	})
)

// IncEnrollment records one successful enrollment.
func IncEnrollment() {
	enrollments.Inc()
}

// ObserveRecognition records one recognition request: its duration and how
// many probes matched versus missed.
func ObserveRecognition(d time.Duration, matched, unmatched int) {
	recognitions.Inc()
	recognitionSeconds.Observe(d.Seconds())
	matches.WithLabelValues("match").Add(float64(matched))
	matches.WithLabelValues("no_match").Add(float64(unmatched))
}

// IncAttendanceSave records one saved attendance record.
func IncAttendanceSave() {
	attendanceSaves.Inc()
}

// SetGallerySize updates the gallery gauges after a mutation.
func SetGallerySize(subjects, embeddings int) {
	gallerySubjects.Set(float64(subjects))
	galleryEmbeddings.Set(float64(embeddings))
}

// SetAttendanceRecords updates the record count gauge.
func SetAttendanceRecords(n int) {
	attendanceRecords.Set(float64(n))
}

// Handler returns the scrape handler for the service registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
