package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
)

func seedCheckpoint(t *testing.T, p *Pipeline, id string, records []model.Record) {
	t.Helper()
	if err := p.Checkpoints().Save(id, records); err != nil {
		t.Fatal(err)
	}
}

func TestRegions_PatchesOnlyLocation(t *testing.T) {
	cfg := testConfig(t)
	writeTranscript(t, cfg, "ep1", jennyTranscript, "")

	backend := &fakeBackend{fn: func(req llm.Request) (string, error) {
		return "```json\n{\"country\": null, \"state_or_region\": \"or\", \"city\": \"Bend\"}\n```", nil
	}}
	p := newTestPipeline(t, cfg, backend)

	seedCheckpoint(t, p, "ep1", []model.Record{{
		Instance:           7,
		CallerName:         model.StringPtr("Jenny"),
		Country:            model.StringPtr("Canada"),
		StateOrRegion:      model.StringPtr("Ontario"),
		CallType:           "Bigfoot/Sasquatch",
		Description:        "Saw a creature.",
		CallerIntroSnippet: model.StringPtr("Hi Derek long time listener"),
		Verified:           true,
	}})

	res, err := p.Regions(context.Background())
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	if res.Updated != 1 || res.Sessions != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	req := backend.calls[0]
	if req.Instructions != extract.RegionInstructions {
		t.Error("region repair should use the location-only instructions")
	}
	if !strings.Contains(req.Content, "Caller: Jenny") || !strings.Contains(req.Content, "camping near Bend") {
		t.Errorf("content should carry the transcript excerpt:\n%s", req.Content)
	}

	records, _ := p.Checkpoints().Load("ep1")
	r := records[0]
	if model.Deref(r.StateOrRegion) != "Oregon" || model.Deref(r.Country) != "USA" || model.Deref(r.City) != "Bend" {
		t.Errorf("location not patched: %v %v %v", r.Country, r.StateOrRegion, r.City)
	}
	if r.Instance != 7 || !r.Verified || r.CallType != "Bigfoot/Sasquatch" {
		t.Errorf("non-location fields changed: %+v", r)
	}
	if !p.Checkpoints().RegionsDone("ep1") {
		t.Error("marker not written")
	}

	// marked sessions are not sent again
	again, err := p.Regions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.Skipped != 1 || backend.count() != 1 {
		t.Errorf("marked session repaired again: %+v calls=%d", again, backend.count())
	}
}

func TestRegions_AllFailedLeavesSessionUnmarked(t *testing.T) {
	cfg := testConfig(t)
	writeTranscript(t, cfg, "ep1", jennyTranscript, "")
	backend := &fakeBackend{fn: func(llm.Request) (string, error) { return "", errors.New("overloaded") }}
	p := newTestPipeline(t, cfg, backend)

	seedCheckpoint(t, p, "ep1", []model.Record{{CallType: "Other", Description: "x"}})
	before, _ := os.ReadFile(p.Checkpoints().Path("ep1"))

	res, err := p.Regions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Updated != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if p.Checkpoints().RegionsDone("ep1") {
		t.Error("unchanged session must not be marked")
	}
	after, _ := os.ReadFile(p.Checkpoints().Path("ep1"))
	if string(before) != string(after) {
		t.Error("unchanged session must not be rewritten")
	}
}

func TestExcerpt(t *testing.T) {
	clean := strings.Repeat("x", 300) + "Hi Derek, this is Sam" + strings.Repeat("y", 2000)
	r := &model.Record{CallerIntroSnippet: model.StringPtr("hi derek, this is sam"), Description: "fallback"}

	got := Excerpt(clean, r)
	if len(got) != 1500 {
		t.Errorf("expected 200+1300 bytes, got %d", len(got))
	}
	if !strings.HasPrefix(got, strings.Repeat("x", 100)) || !strings.Contains(got, "Hi Derek") {
		t.Errorf("excerpt window wrong: %q", got[:120])
	}

	r.CallerIntroSnippet = model.StringPtr("never said")
	if Excerpt(clean, r) != "fallback" {
		t.Error("missing snippet should fall back to the description")
	}
	r.CallerIntroSnippet = nil
	if Excerpt(clean, r) != "fallback" {
		t.Error("nil snippet should fall back to the description")
	}
}

func TestExcerpt_NearStart(t *testing.T) {
	r := &model.Record{CallerIntroSnippet: model.StringPtr("hello")}
	if got := Excerpt("hello world", r); got != "hello world" {
		t.Errorf("got %q", got)
	}
}
