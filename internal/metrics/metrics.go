package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports upload and streaming telemetry to Prometheus.
// A nil *Observer is valid and records nothing.
type Observer struct {
	uploadDuration prometheus.Histogram
	uploadBytes    prometheus.Counter
	uploadErrors   prometheus.Counter
	streamBytes    prometheus.Counter
	streams        *prometheus.CounterVec
}

// New registers the media metrics on reg (DefaultRegisterer when nil).
func New(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = "media"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time to persist and publish an uploaded object.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of successfully published uploads.",
		}),
		uploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Uploads that failed to persist or publish.",
		}),
		streamBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streamed_bytes_total",
			Help:      "Body bytes written to playback clients.",
		}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Playback responses by status and outcome.",
		}, []string{"status", "outcome"}),
	}
	collectors := []prometheus.Collector{o.uploadDuration, o.uploadBytes, o.uploadErrors, o.streamBytes, o.streams}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register media metric: %w", err)
		}
	}
	return o, nil
}

func (o *Observer) RecordUpload(d time.Duration, size int64, err error) {
	if o == nil {
		return
	}
	o.uploadDuration.Observe(d.Seconds())
	if err != nil {
		o.uploadErrors.Inc()
		return
	}
	o.uploadBytes.Add(float64(size))
}

// RecordStream: outcome "complete", "aborted" или "rejected".
func (o *Observer) RecordStream(status int, written int64, outcome string) {
	if o == nil {
		return
	}
	o.streams.WithLabelValues(strconv.Itoa(status), outcome).Inc()
	o.streamBytes.Add(float64(written))
}
