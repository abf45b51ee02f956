// Package sanitize repairs extracted records so every field satisfies the
// tidy-data schema. Nothing in this package returns an error: each malformed
// value degrades to a defined default.
package sanitize

import (
	"github.com/ppiankov/casefile/internal/model"
)

// Options tunes the sanitizer heuristics
type Options struct {
	DecadeCutoff    int    // two-digit decades >= cutoff land in the 1900s
	DomesticCountry string // forced country for domestic regions
	Vocabulary      *model.Vocabulary
}

// OptionsFromConfig builds Options from the sanitize config section
func OptionsFromConfig(cfg model.SanitizeConfig) Options {
	return Options{
		DecadeCutoff:    cfg.DecadeCutoff,
		DomesticCountry: cfg.DomesticCountry,
	}
}

// Sanitizer enforces the record schema
type Sanitizer struct {
	opts Options
}

// New creates a Sanitizer, filling unset options with defaults
func New(opts Options) *Sanitizer {
	if opts.Vocabulary == nil {
		opts.Vocabulary = model.DefaultVocabulary
	}
	if opts.DomesticCountry == "" {
		opts.DomesticCountry = "USA"
	}
	return &Sanitizer{opts: opts}
}

// Record repairs every field of r in place. Running it twice yields the
// same record as running it once.
func (s *Sanitizer) Record(r *model.Record) {
	for _, f := range []**string{
		&r.CallerName, &r.Country, &r.StateOrRegion, &r.City, &r.CallTypeSecondary,
		&r.DateOfEvent, &r.TimeOfEvent, &r.Setting, &r.HostCommentary, &r.CallerIntroSnippet,
	} {
		nullify(f)
	}

	s.Location(r)
	s.category(r)

	if r.DateOfEvent != nil {
		r.DateOfEvent = NormalizeDate(*r.DateOfEvent, s.opts.DecadeCutoff)
	}
	if r.TimeOfEvent != nil {
		r.TimeOfEvent = NormalizeTime(*r.TimeOfEvent)
	}

	r.InvolvesOtherWitnesses = normalizeWitness(r.WitnessRaw, r.InvolvesOtherWitnesses)
	r.WitnessRaw = nil

	r.CallerEmotionalTone = NormalizeTone(r.CallerEmotionalTone)
}

// Location applies only the location rules: null-like values, region
// canonicalization and the domestic country override.
func (s *Sanitizer) Location(r *model.Record) {
	nullify(&r.Country)
	nullify(&r.City)
	if r.StateOrRegion != nil {
		r.StateOrRegion = NormalizeRegion(*r.StateOrRegion)
	}
	if r.StateOrRegion != nil && IsDomestic(*r.StateOrRegion) {
		country := s.opts.DomesticCountry
		r.Country = &country
	}
}

func (s *Sanitizer) category(r *model.Record) {
	vocab := s.opts.Vocabulary
	if label, ok := vocab.Canonical(r.CallType); ok {
		r.CallType = label
	} else {
		r.CallType = model.CatchAllCategory
	}

	if r.CallTypeSecondary != nil {
		if label, ok := vocab.Canonical(*r.CallTypeSecondary); ok {
			r.CallTypeSecondary = &label
		} else {
			r.CallTypeSecondary = nil
		}
	}
}

func nullify(f **string) {
	if *f != nil && IsNullLike(**f) {
		*f = nil
	}
}
