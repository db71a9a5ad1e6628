package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the portal's counters. A nil *Recorder is valid and records nothing,
// which keeps services usable in tests without a registry.
type Recorder struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	archives     *prometheus.CounterVec
	skippedFiles prometheus.Counter
	archiveBytes prometheus.Counter
	emptyStreams *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Submission attempts by outcome (ok or the rejection code).",
		}, []string{"outcome"}),
		archives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_archive_builds_total",
			Help: "ZIP archives streamed, by scope.",
		}, []string{"scope"}),
		skippedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_archive_skipped_files_total",
			Help: "Stored files left out of archives because the object was missing on disk.",
		}),
		archiveBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_archive_bytes_total",
			Help: "Bytes written to archive responses.",
		}),
		emptyStreams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_archive_empty_streams_total",
			Help: "Archives abandoned because every planned object vanished before streaming.",
		}, []string{"scope"}),
	}
	reg.MustRegister(
		r.submissions,
		r.archives,
		r.skippedFiles,
		r.archiveBytes,
		r.emptyStreams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Submission(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Archive(scope string, bytes int64) {
	if r == nil {
		return
	}
	r.archives.WithLabelValues(scope).Inc()
	r.archiveBytes.Add(float64(bytes))
}

func (r *Recorder) SkippedFile() {
	if r == nil {
		return
	}
	r.skippedFiles.Inc()
}

func (r *Recorder) EmptyStream(scope string) {
	if r == nil {
		return
	}
	r.emptyStreams.WithLabelValues(scope).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
