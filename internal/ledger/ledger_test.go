package ledger

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger_RecordAndRuns(t *testing.T) {
	l := openTestLedger(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, elapsed := range []time.Duration{10 * time.Second, 20 * time.Second} {
		err := l.Record(Run{
			SessionID:  "ep1",
			Model:      "haiku",
			Elapsed:    elapsed,
			Chunks:     2,
			Records:    5,
			Verified:   4,
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := l.Runs("ep1")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Elapsed != 20*time.Second {
		t.Errorf("expected newest first, got %v", runs[0].Elapsed)
	}
	if runs[0].Records != 5 || runs[0].Verified != 4 || runs[0].Model != "haiku" {
		t.Errorf("unexpected run: %+v", runs[0])
	}
	if !runs[1].FinishedAt.Equal(base) {
		t.Errorf("finishedAt round trip: got %v want %v", runs[1].FinishedAt, base)
	}

	if n, _ := l.Count(); n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestLedger_AverageSessionTime(t *testing.T) {
	l := openTestLedger(t)

	avg, err := l.AverageSessionTime("haiku", 10)
	if err != nil || avg != 0 {
		t.Fatalf("empty ledger: avg=%v err=%v", avg, err)
	}

	l.Record(Run{SessionID: "a", Model: "haiku", Elapsed: 4 * time.Second})
	l.Record(Run{SessionID: "b", Model: "haiku", Elapsed: 8 * time.Second})
	l.Record(Run{SessionID: "c", Model: "sonnet", Elapsed: 100 * time.Second})

	avg, err = l.AverageSessionTime("haiku", 10)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 6*time.Second {
		t.Errorf("expected 6s, got %v", avg)
	}
}

func TestLedger_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.sqlite")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Record(Run{SessionID: "a", Model: "haiku", Elapsed: time.Second})
	l.Close()

	l, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	if n, _ := l.Count(); n != 1 {
		t.Errorf("expected persisted run, got %d", n)
	}
}
