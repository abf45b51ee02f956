package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordSession(OutcomeCached)
	m.RecordSession(OutcomeCached)
	m.RecordSessionDone(12*time.Second, 5, 3)
	m.RecordChunk("anthropic", ChunkOK, 2*time.Second, 1000, 200)
	m.RecordChunk("anthropic", "decode", time.Second, 900, 10)
	m.RecordRegionRepair("updated")

	if got := testutil.ToFloat64(m.Sessions.WithLabelValues(OutcomeCached)); got != 2 {
		t.Errorf("cached sessions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Sessions.WithLabelValues(OutcomeParsed)); got != 1 {
		t.Errorf("parsed sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Records); got != 5 {
		t.Errorf("records = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.VerifiedRecords); got != 3 {
		t.Errorf("verified = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Chunks.WithLabelValues("decode")); got != 1 {
		t.Errorf("decode chunks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BackendTokens.WithLabelValues("anthropic", "input")); got != 1900 {
		t.Errorf("input tokens = %v, want 1900", got)
	}
	if got := testutil.CollectAndCount(m.BackendLatency); got != 1 {
		t.Errorf("expected one latency series, got %d", got)
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordSession(OutcomeFailed)
	if got := testutil.ToFloat64(b.Sessions.WithLabelValues(OutcomeFailed)); got != 0 {
		t.Errorf("registries should not share state, got %v", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordSessionDone(time.Second, 2, 1)

	path := filepath.Join(t.TempDir(), "prom", "casefile.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "casefile_records_total 2") {
		t.Errorf("textfile missing records counter:\n%s", data)
	}
}
