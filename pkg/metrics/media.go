package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	UploadResultStored   = "stored"
	UploadResultRejected = "rejected"
	UploadResultFailed   = "failed"
)

// MediaMetrics counts image uploads by result.
type MediaMetrics struct {
	uploads *prometheus.CounterVec
}

func NewMediaMetrics(reg prometheus.Registerer) *MediaMetrics {
	if reg == nil {
		return &MediaMetrics{}
	}
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Image uploads grouped by result.",
	}, []string{"result"})
	reg.MustRegister(uploads)
	return &MediaMetrics{uploads: uploads}
}

func (m *MediaMetrics) IncUpload(result string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(result)).Inc()
}
