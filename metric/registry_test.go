package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	require.NotNil(t, registry)
	require.NotNil(t, registry.Metrics)
	require.NotNil(t, registry.PrometheusRegistry())
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "Test counter",
	})

	err := registry.RegisterCounter("test_service", "test_counter_total", counter)
	require.NoError(t, err)

	// Duplicate registration is rejected
	err = registry.RegisterCounter("test_service", "test_counter_total", counter)
	assert.Error(t, err)
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "Test gauge",
	})

	require.NoError(t, registry.RegisterGauge("test_service", "test_gauge", gauge))
	assert.True(t, registry.Unregister("test_service", "test_gauge"))
	assert.False(t, registry.Unregister("test_service", "test_gauge"))

	// Re-registration after unregister succeeds
	require.NoError(t, registry.RegisterGauge("test_service", "test_gauge", gauge))
}

func TestCoreMetricsGatherable(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordRequest("/query/translate", "200", 25*time.Millisecond)
	core.RecordClassificationRun("success", 12, 3)
	core.RecordSimilarityEvaluations(24)
	core.RecordCompile("availability", "success")
	core.RecordCompletionCall("slot_extraction", "success", 100*time.Millisecond)
	core.RecordEmbeddingCall("success", 40*time.Millisecond)
	core.RecordError("SlotExtractor", "extraction")
	core.RecordHealthStatus("store", true)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	runs, ok := byName["semquery_classifier_runs_total"]
	require.True(t, ok, "classifier run counter should be gathered")
	require.Len(t, runs.GetMetric(), 1)
	assert.Equal(t, 1.0, runs.GetMetric()[0].GetCounter().GetValue())

	skipped, ok := byName["semquery_classifier_items_skipped_total"]
	require.True(t, ok)
	assert.Equal(t, 3.0, skipped.GetMetric()[0].GetCounter().GetValue())

	compile, ok := byName["semquery_compiler_compile_total"]
	require.True(t, ok)
	require.Len(t, compile.GetMetric(), 1)

	_, ok = byName["semquery_http_requests_total"]
	assert.True(t, ok)
}
