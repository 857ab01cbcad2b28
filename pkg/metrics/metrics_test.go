package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.IncPlaced()
	m.IncPlaced()
	m.IncFailure("persist")
	m.IncFailure("")
	m.IncNotificationFailure()
	m.ObserveDuration(120 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterTotal(t, mfs, "checkout_orders_placed_total"); got != 2 {
		t.Fatalf("expected placed=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "checkout_failures_total", "reason", "persist"); err != nil || got != 1 {
		t.Fatalf("expected persist failure=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "checkout_failures_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown failure=1, got %f err=%v", got, err)
	}
	if got := counterTotal(t, mfs, "checkout_notification_failures_total"); got != 1 {
		t.Fatalf("expected notification failures=1, got %f", got)
	}
}

func TestMediaAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	media := NewMediaMetrics(reg)
	media.IncUpload(UploadResultStored)
	media.IncUpload(UploadResultRejected)
	httpMetrics := NewHTTPMetrics(reg)
	httpMetrics.Observe(http.MethodGet, "/api/v1/products", http.StatusOK, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "media_uploads_total", "result", UploadResultStored); err != nil || got != 1 {
		t.Fatalf("expected stored=1, got %f err=%v", got, err)
	}
	if findMetricFamily(mfs, "http_request_duration_seconds") == nil {
		t.Fatal("expected http histogram to be exported")
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewCheckoutMetrics(nil).IncPlaced()
	NewMediaMetrics(nil).IncUpload(UploadResultFailed)
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", 200, time.Millisecond)
	var nilMetrics *CheckoutMetrics
	nilMetrics.IncFailure("x")
}

func counterTotal(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		t.Fatalf("metric %q not found", name)
	}
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
