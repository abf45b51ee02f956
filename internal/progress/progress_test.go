package progress

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/transcript"
)

// fakeSource maps episode ids to transcript text
type fakeSource map[string]string

func (f fakeSource) Status(ep model.Episode, parsed bool) model.SessionStatus {
	if parsed {
		return model.StatusParsed
	}
	text, ok := f[ep.ID]
	switch {
	case !ok:
		return model.StatusNotStarted
	case strings.HasPrefix(text, model.TranscriptUnavailable):
		return model.StatusFailed
	}
	return model.StatusTranscribed
}

func TestPlan(t *testing.T) {
	episodes := []model.Episode{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	parsed := map[string]bool{"a": true}
	src := fakeSource{
		"a": "text",
		"b": "text",
		"c": "text",
		"d": model.TranscriptUnavailable,
	}
	spec, _ := llm.Lookup("haiku")

	est := Plan(episodes, func(id string) bool { return parsed[id] }, src, spec, 0)

	if est.Cached != 1 || est.ToProcess != 2 || est.Unavailable != 1 || est.NoTranscript != 1 {
		t.Errorf("unexpected counts: %+v", est)
	}
	if est.InputTokens != 26000 || est.OutputTokens != 4000 {
		t.Errorf("unexpected tokens: %d/%d", est.InputTokens, est.OutputTokens)
	}
	if math.Abs(est.Cost-0.046) > 1e-9 {
		t.Errorf("unexpected cost %v", est.Cost)
	}
	if est.Duration != 6*time.Second {
		t.Errorf("unexpected duration %v", est.Duration)
	}
	if !strings.Contains(est.Summary(), "2 episodes to process") {
		t.Errorf("unexpected summary %q", est.Summary())
	}
}

func TestPlan_TranscriptStore(t *testing.T) {
	dir := t.TempDir()
	write := func(id, text string) {
		if err := os.WriteFile(filepath.Join(dir, id+".txt"), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("done", "text")
	write("fresh", "text")
	write("gave_up", model.TranscriptUnavailable)

	episodes := []model.Episode{{ID: "done"}, {ID: "fresh"}, {ID: "gave_up"}, {ID: "later"}}
	spec, _ := llm.Lookup("haiku")
	est := Plan(episodes, func(id string) bool { return id == "done" }, transcript.NewStore(dir), spec, 0)

	if est.Cached != 1 || est.ToProcess != 1 || est.Unavailable != 1 || est.NoTranscript != 1 {
		t.Errorf("unexpected counts: %+v", est)
	}
}

func TestPlan_HistoricalAverage(t *testing.T) {
	spec, _ := llm.Lookup("haiku")
	est := Plan([]model.Episode{{ID: "a"}}, func(string) bool { return false }, fakeSource{"a": "x"}, spec, 40*time.Second)
	if est.Duration != 40*time.Second {
		t.Errorf("expected ledger average to drive duration, got %v", est.Duration)
	}
}

func TestPlan_NothingToDo(t *testing.T) {
	spec, _ := llm.Lookup("haiku")
	est := Plan([]model.Episode{{ID: "a"}}, func(string) bool { return true }, fakeSource{}, spec, 0)
	if !strings.Contains(est.Summary(), "nothing to do") {
		t.Errorf("unexpected summary %q", est.Summary())
	}
}

func TestHumanize(t *testing.T) {
	tests := map[time.Duration]string{
		5 * time.Minute:  "~5 min",
		90 * time.Minute: "~1.5 hours",
		36 * time.Hour:   "~1.5 days",
	}
	for d, want := range tests {
		if got := Humanize(d); got != want {
			t.Errorf("Humanize(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestTracker_RollingWindow(t *testing.T) {
	tr := NewTracker(20)

	done, eta := tr.Done(10 * time.Second)
	if done != 1 || eta != 190*time.Second {
		t.Errorf("after first: done=%d eta=%v", done, eta)
	}

	// ten fast sessions push the slow first one out of the window
	for i := 0; i < 10; i++ {
		done, eta = tr.Done(2 * time.Second)
	}
	if done != 11 || eta != 18*time.Second {
		t.Errorf("after window rolled: done=%d eta=%v", done, eta)
	}
}

func TestTracker_Finished(t *testing.T) {
	tr := NewTracker(1)
	if _, eta := tr.Done(time.Second); eta != 0 {
		t.Errorf("no remaining sessions should give zero ETA, got %v", eta)
	}
}
