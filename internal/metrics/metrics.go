// Package metrics provides Prometheus metrics for parse runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casefile"

// Session outcomes
const (
	OutcomeParsed      = "parsed"
	OutcomeCached      = "cached"
	OutcomeUnavailable = "unavailable"
	OutcomeMissing     = "missing"
	OutcomeFailed      = "failed"
)

// Chunk outcomes (extract.FailureKind values plus ok)
const ChunkOK = "ok"

// Metrics holds all run metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Sessions        *prometheus.CounterVec
	Chunks          *prometheus.CounterVec
	Records         prometheus.Counter
	VerifiedRecords prometheus.Counter
	RegionRepairs   *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	BackendTokens   *prometheus.CounterVec
	SessionDuration prometheus.Histogram
}

// New creates and registers all metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions seen by a parse run, by outcome",
		}, []string{"outcome"}),
		Chunks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Extraction chunks, by outcome",
		}, []string{"outcome"}),
		Records: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Call records written to checkpoints",
		}),
		VerifiedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_verified_total",
			Help:      "Call records corroborated by their transcript",
		}),
		RegionRepairs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_repairs_total",
			Help:      "Region repair attempts, by result",
		}, []string{"result"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_latency_seconds",
			Help:      "Backend call latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120, 300},
		}, []string{"provider"}),
		BackendTokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_tokens_total",
			Help:      "Tokens reported by the backend",
		}, []string{"provider", "direction"}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall time to parse one session",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSession counts one session outcome
func (m *Metrics) RecordSession(outcome string) {
	m.Sessions.WithLabelValues(outcome).Inc()
}

// RecordSessionDone records a parsed session's totals
func (m *Metrics) RecordSessionDone(elapsed time.Duration, records, verified int) {
	m.Sessions.WithLabelValues(OutcomeParsed).Inc()
	m.SessionDuration.Observe(elapsed.Seconds())
	m.Records.Add(float64(records))
	m.VerifiedRecords.Add(float64(verified))
}

// RecordChunk records one backend call
func (m *Metrics) RecordChunk(provider, outcome string, latency time.Duration, inTokens, outTokens int) {
	m.Chunks.WithLabelValues(outcome).Inc()
	if latency > 0 {
		m.BackendLatency.WithLabelValues(provider).Observe(latency.Seconds())
	}
	m.BackendTokens.WithLabelValues(provider, "input").Add(float64(inTokens))
	m.BackendTokens.WithLabelValues(provider, "output").Add(float64(outTokens))
}

// RecordRegionRepair counts one region repair result (updated, unchanged, failed)
func (m *Metrics) RecordRegionRepair(result string) {
	m.RegionRepairs.WithLabelValues(result).Inc()
}

// WriteTextfile dumps the registry in node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
