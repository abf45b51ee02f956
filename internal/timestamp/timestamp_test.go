package timestamp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
)

var segments = []model.Segment{
	{StartMS: 0, StartHMS: "00:00:00", EndHMS: "00:00:05", Text: "Welcome back to the show, gang."},
	{StartMS: 5000, StartHMS: "00:00:05", EndHMS: "00:01:10", Text: "Hi Derek, this is Marcus from Tennessee."},
	{StartMS: 70000, StartHMS: "00:01:10", EndHMS: "00:02:00", Text: "I was driving home late one night on Route 9"},
	{StartMS: 120000, StartHMS: "00:02:00", EndHMS: "00:03:00", Text: "My name is Priya and I have a story about my grandmother."},
}

func TestFullSnippet(t *testing.T) {
	ix := NewIndex(segments)
	r := &model.Record{CallerIntroSnippet: model.StringPtr("  I was driving HOME late ")}
	if got := FullSnippet(r, ix.Text()); got < 0 {
		t.Fatal("expected snippet to match")
	}
}

func TestResolver_Records(t *testing.T) {
	ix := NewIndex(segments)
	records := []model.Record{
		{CallerIntroSnippet: model.StringPtr("Hi Derek, this is Marcus from Tennessee.")},
		{CallerIntroSnippet: model.StringPtr("I was driving home late one night on the interstate near Memphis")},
		{CallerName: model.StringPtr("Priya"), CallerIntroSnippet: model.StringPtr("something the transcriber heard differently")},
		{CallerName: model.StringPtr("Caller")},
		{},
	}

	resolved := NewResolver().Records(records, ix)

	want := []string{"00:00:05", "00:01:10", "00:02:00", "", ""}
	for i, w := range want {
		got := ""
		if records[i].CallStartTime != nil {
			got = *records[i].CallStartTime
		}
		if got != w {
			t.Errorf("record %d: call_start_time = %q, want %q", i, got, w)
		}
	}
	if resolved != 3 {
		t.Errorf("expected 3 resolved, got %d", resolved)
	}
}

func TestResolver_NameWithoutSnippet(t *testing.T) {
	records := []model.Record{{CallerName: model.StringPtr("Marcus")}}
	NewResolver().Records(records, NewIndex(segments))
	if records[0].CallStartTime == nil || *records[0].CallStartTime != "00:00:05" {
		t.Errorf("expected name anchor match, got %v", records[0].CallStartTime)
	}
}

func TestResolver_NilIndex(t *testing.T) {
	records := []model.Record{{CallerIntroSnippet: model.StringPtr("hi"), CallStartTime: model.StringPtr("00:00:01")}}
	if n := NewResolver().Records(records, nil); n != 0 {
		t.Errorf("expected 0 resolved, got %d", n)
	}
	if records[0].CallStartTime != nil {
		t.Error("nil index should clear the time")
	}
}

func TestResolver_CustomOrder(t *testing.T) {
	first := func(r *model.Record, text string) int { return 0 }
	never := func(r *model.Record, text string) int { t.Error("later matcher called after a hit"); return -1 }

	records := []model.Record{{}}
	NewResolver(first, never).Records(records, NewIndex(segments))
	if records[0].CallStartTime == nil || *records[0].CallStartTime != "00:00:00" {
		t.Errorf("unexpected time %v", records[0].CallStartTime)
	}
}

func TestLabelAt_SegmentBoundaries(t *testing.T) {
	ix := NewIndex([]model.Segment{
		{StartHMS: "a", Text: "abc"},
		{StartHMS: "b", Text: "de"},
	})
	// "abc de "
	cases := map[int]string{0: "a", 3: "a", 4: "b", 6: "b"}
	for off, want := range cases {
		got, ok := ix.LabelAt(off)
		if !ok || got != want {
			t.Errorf("LabelAt(%d) = %q,%v want %q", off, got, ok, want)
		}
	}
	if _, ok := ix.LabelAt(7); ok {
		t.Error("offset past the end should not resolve")
	}
}

func TestReadSegments(t *testing.T) {
	dir := t.TempDir()

	segs, err := ReadSegments(filepath.Join(dir, "missing_timestamps.json"))
	if err != nil || segs != nil {
		t.Errorf("missing file should give nil segments, got %v %v", segs, err)
	}

	path := filepath.Join(dir, "ep_timestamps.json")
	data := `[{"start_ms": 0, "start_hms": "00:00:00", "end_hms": "00:00:04", "text": "Hello there"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	segs, err = ReadSegments(path)
	if err != nil {
		t.Fatalf("ReadSegments failed: %v", err)
	}
	if ix := NewIndex(segs); ix.Text() != "hello there " {
		t.Errorf("unexpected flattened text %q", ix.Text())
	}

	bad := filepath.Join(dir, "bad_timestamps.json")
	_ = os.WriteFile(bad, []byte("{"), 0o644)
	if _, err := ReadSegments(bad); err == nil {
		t.Error("expected decode error")
	}
}
