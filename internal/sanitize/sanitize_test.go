package sanitize

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
)

func newTestSanitizer() *Sanitizer {
	return New(Options{DecadeCutoff: 30, DomesticCountry: "USA"})
}

func strOrNil(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-12-02", "2025-12-02"},
		{" 2019-07-04 ", "2019-07-04"},
		{"2021-02-30", "<nil>"}, // not a calendar date
		{"2025-12", "2025-12-01"},
		{"2025-13", "<nil>"},
		{"1987", "1987-01-01"},
		{"1990s", "1990-01-01"},
		{"the 1980's", "1980-01-01"},
		{"the 90s", "1990-01-01"},
		{"mid-90s", "1990-01-01"},
		{"'70s", "1970-01-01"},
		{"the 20s", "2020-01-01"},
		{"07", "2007-01-01"},
		{"'85", "1985-01-01"},
		{"summer 2020", "<nil>"},
		{"when I was a kid", "<nil>"},
		{"1995-1997", "<nil>"},
		{"", "<nil>"},
		{"0000", "<nil>"},
		{"0000-03", "<nil>"},
		{"0000-01-01", "<nil>"},
		{"0000s", "<nil>"},
		{"0001", "0001-01-01"},
	}

	for _, tt := range tests {
		if got := strOrNil(NormalizeDate(tt.in, 30)); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDate_Cutoff(t *testing.T) {
	if got := strOrNil(NormalizeDate("07", 5)); got != "1907-01-01" {
		t.Errorf("cutoff 5: got %s, want 1907-01-01", got)
	}
	if got := strOrNil(NormalizeDate("the 40s", 50)); got != "2040-01-01" {
		t.Errorf("cutoff 50: got %s, want 2040-01-01", got)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3:05", "03:05"},
		{"23:59", "23:59"},
		{"24:00", "<nil>"},
		{"12:75", "<nil>"},
		{"midnight", "00:00"},
		{"Noon", "12:00"},
		{"dusk", "19:00"},
		{"2 AM", "02:00"},
		{"3:30 pm", "15:30"},
		{"11pm", "23:00"},
		{"12am", "00:00"},
		{"12 pm", "12:00"},
		{"around 2 a.m.", "02:00"},
		{"13 pm", "<nil>"},
		{"around 3 in the afternoon", "15:00"},
		{"about 7 in the evening", "19:00"},
		{"6 o'clock in the morning", "06:00"},
		{"10 at night", "22:00"},
		{"2 at night", "02:00"},
		{"sometime late at night", "23:00"},
		{"in the late afternoon", "16:00"},
		{"mid-morning", "10:00"},
		{"it was the middle of the night", "03:00"},
		{"daytime", "<nil>"},
		{"", "<nil>"},
	}

	for _, tt := range tests {
		if got := strOrNil(NormalizeTime(tt.in)); got != tt.want {
			t.Errorf("NormalizeTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CA", "California"},
		{"ca", "California"},
		{"dc", "District of Columbia"},
		{"SoCal", "California"},
		{"mass", "Massachusetts"},
		{"new york", "New York"},
		{"BRITISH COLUMBIA", "British Columbia"},
		{"McAllen Area", "McAllen Area"},
		{"Unknown", "<nil>"},
		{"  ", "<nil>"},
	}

	for _, tt := range tests {
		if got := strOrNil(NormalizeRegion(tt.in)); got != tt.want {
			t.Errorf("NormalizeRegion(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTone(t *testing.T) {
	tests := map[string]string{
		"scared":         "scared",
		"Matter_Of_Fact": "matter-of-fact",
		"matter of fact": "matter-of-fact",
		"terrified":      "scared",
		"Wistful":        "nostalgic",
		"tearful":        "emotional",
		"confused":       "matter-of-fact",
		"":               "matter-of-fact",
	}
	for in, want := range tests {
		if got := NormalizeTone(in); got != want {
			t.Errorf("NormalizeTone(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSanitizer_StateAbbreviationForcesCountry(t *testing.T) {
	r := &model.Record{
		StateOrRegion: model.StringPtr("CA"),
		Country:       model.StringPtr("Canada"),
		CallType:      "Bigfoot/Sasquatch",
	}
	newTestSanitizer().Record(r)

	if strOrNil(r.StateOrRegion) != "California" {
		t.Errorf("expected California, got %s", strOrNil(r.StateOrRegion))
	}
	if strOrNil(r.Country) != "USA" {
		t.Errorf("expected country forced to USA, got %s", strOrNil(r.Country))
	}
}

func TestSanitizer_NullLikeFields(t *testing.T) {
	r := &model.Record{
		CallerName:         model.StringPtr("Anonymous"),
		City:               model.StringPtr(" N/A "),
		Setting:            model.StringPtr("not mentioned"),
		HostCommentary:     model.StringPtr(""),
		CallerIntroSnippet: model.StringPtr("unknown"),
		Country:            model.StringPtr("Parts Unknown"),
		CallType:           "Ghost/Apparition",
	}
	newTestSanitizer().Record(r)

	for name, f := range map[string]*string{
		"caller_name": r.CallerName, "city": r.City, "setting": r.Setting,
		"commentary": r.HostCommentary, "snippet": r.CallerIntroSnippet, "country": r.Country,
	} {
		if f != nil {
			t.Errorf("%s should be null, got %q", name, *f)
		}
	}
}

func TestSanitizer_Category(t *testing.T) {
	tests := []struct {
		primary       string
		secondary     *string
		wantPrimary   string
		wantSecondary string
	}{
		{"Dogman", nil, "Dogman", "<nil>"},
		{"hat man", model.StringPtr("old hag"), "Hat Man", "Old Hag"},
		{"Werewolf", model.StringPtr("Skunk Ape"), "Other", "<nil>"},
		{"", model.StringPtr("N/A"), "Other", "<nil>"},
	}

	s := newTestSanitizer()
	for _, tt := range tests {
		r := &model.Record{CallType: tt.primary, CallTypeSecondary: tt.secondary}
		s.Record(r)
		if r.CallType != tt.wantPrimary {
			t.Errorf("primary %q -> %q, want %q", tt.primary, r.CallType, tt.wantPrimary)
		}
		if got := strOrNil(r.CallTypeSecondary); got != tt.wantSecondary {
			t.Errorf("secondary for %q -> %s, want %s", tt.primary, got, tt.wantSecondary)
		}
		if !model.DefaultVocabulary.Contains(r.CallType) {
			t.Errorf("call_type %q escaped the vocabulary", r.CallType)
		}
	}
}

func TestSanitizer_Witness(t *testing.T) {
	tests := []struct {
		raw     any
		current bool
		want    bool
	}{
		{true, false, true},
		{false, true, false},
		{"Yes", false, true},
		{"1", false, true},
		{"TRUE", false, true},
		{"maybe", true, false},
		{float64(1), true, false},
		{nil, false, false},
	}

	s := newTestSanitizer()
	for _, tt := range tests {
		r := &model.Record{WitnessRaw: tt.raw, InvolvesOtherWitnesses: tt.current}
		s.Record(r)
		if r.InvolvesOtherWitnesses != tt.want {
			t.Errorf("witness %#v -> %v, want %v", tt.raw, r.InvolvesOtherWitnesses, tt.want)
		}
		if r.WitnessRaw != nil {
			t.Errorf("WitnessRaw should be cleared after sanitizing")
		}
	}
}

func TestSanitizer_Idempotent(t *testing.T) {
	inputs := []*model.Record{
		{
			CallerName:          model.StringPtr("Jim"),
			StateOrRegion:       model.StringPtr("fla"),
			City:                model.StringPtr("tampa"),
			CallType:            "ufo/uap",
			CallTypeSecondary:   model.StringPtr("orb/light"),
			DateOfEvent:         model.StringPtr("the 90s"),
			TimeOfEvent:         model.StringPtr("around 3 in the afternoon"),
			WitnessRaw:          "yes",
			CallerEmotionalTone: "Anxious",
		},
		{
			StateOrRegion:       model.StringPtr("ONTARIO"),
			Country:             model.StringPtr("canada"),
			CallType:            "nonsense",
			DateOfEvent:         model.StringPtr("2003-06"),
			TimeOfEvent:         model.StringPtr("2 AM"),
			CallerEmotionalTone: "deadpan",
		},
		{
			StateOrRegion: model.StringPtr("McHenry County"),
			CallType:      "",
			DateOfEvent:   model.StringPtr("a while back"),
			TimeOfEvent:   model.StringPtr("daytime"),
		},
	}

	s := newTestSanitizer()
	for i, r := range inputs {
		s.Record(r)
		once := *r
		s.Record(r)
		if !reflect.DeepEqual(once, *r) {
			t.Errorf("record %d changed on second pass:\nonce:  %+v\ntwice: %+v", i, once, *r)
		}
	}
}

func TestSanitizer_SchemaShapes(t *testing.T) {
	dateShape := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeShape := regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	dates := []string{"2020", "1990s", "07", "the 90s", "a long time ago", "2020-02-29", "summer of '69"}
	times := []string{"25:00", "9:5", "noon", "7pm", "around 3 in the afternoon", "whenever", "0 am"}

	s := newTestSanitizer()
	for i := range dates {
		r := &model.Record{
			DateOfEvent: model.StringPtr(dates[i]),
			TimeOfEvent: model.StringPtr(times[i]),
		}
		s.Record(r)
		if r.DateOfEvent != nil && !dateShape.MatchString(*r.DateOfEvent) {
			t.Errorf("date %q sanitized to %q", dates[i], *r.DateOfEvent)
		}
		if r.TimeOfEvent != nil && !timeShape.MatchString(*r.TimeOfEvent) {
			t.Errorf("time %q sanitized to %q", times[i], *r.TimeOfEvent)
		}
	}
}

func TestCensusRegion(t *testing.T) {
	if r, ok := CensusRegion("Ohio"); !ok || r != "Midwest" {
		t.Errorf("Ohio -> %s, %v", r, ok)
	}
	if _, ok := CensusRegion("Ontario"); ok {
		t.Error("Ontario should not have a census region")
	}
}
