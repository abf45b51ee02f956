package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestVocabulary_Canonical(t *testing.T) {
	v := DefaultVocabulary

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Dogman", "Dogman", true},
		{"dogman", "Dogman", true},
		{"  SHADOW PERSON ", "Shadow Person", true},
		{"black-eyed kids (bek)", "Black-Eyed Kids (BEK)", true},
		{"Werewolf", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := v.Canonical(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Canonical(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestVocabulary_ContainsCatchAll(t *testing.T) {
	if !DefaultVocabulary.Contains(CatchAllCategory) {
		t.Fatalf("taxonomy must contain %q", CatchAllCategory)
	}
	if DefaultVocabulary.Len() != 62 {
		t.Errorf("expected 62 labels, got %d", DefaultVocabulary.Len())
	}
}

func TestRenderTaxonomy(t *testing.T) {
	out := RenderTaxonomy(Taxonomy)
	for _, g := range Taxonomy {
		if !strings.Contains(out, g.Theme+":") {
			t.Errorf("rendered taxonomy missing theme %s", g.Theme)
		}
	}
	if !strings.Contains(out, "Bigfoot/Sasquatch, Dogman") {
		t.Errorf("labels should be comma-joined, got:\n%s", out)
	}
}

func TestSession_Unavailable(t *testing.T) {
	s := Session{Text: "TRANSCRIPT_UNAVAILABLE: download failed"}
	if !s.Unavailable() {
		t.Error("expected sentinel transcript to be unavailable")
	}
	s.Text = "Hello gang, welcome back"
	if s.Unavailable() {
		t.Error("expected normal transcript to be available")
	}
}

func TestDefaultConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Pipeline.ChunkChars = 0
	cfg.Sanitize.DecadeCutoff = 120
	cfg.Log.Format = "xml"
	cfg.Pipeline.ProviderCooldowns["anthropic"] = -time.Second
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"chunk_chars", "decade_cutoff", "log.format", "provider_cooldowns.anthropic"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/cf"

	if got := cfg.ParsedDir(); got != filepath.Join("/tmp/cf", "parsed") {
		t.Errorf("ParsedDir = %s", got)
	}
	if got := cfg.ExportPath(); got != filepath.Join("/tmp/cf", "output", "casefile_tidy.xlsx") {
		t.Errorf("ExportPath = %s", got)
	}
	cfg.Export.Path = "/abs/out.xlsx"
	if got := cfg.ExportPath(); got != "/abs/out.xlsx" {
		t.Errorf("absolute ExportPath = %s", got)
	}
}
