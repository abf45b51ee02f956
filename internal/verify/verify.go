// Package verify scores extracted records for textual support in the
// source transcript. A verdict is advisory: unverified records are kept.
package verify

import (
	"regexp"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Evidence tags
const (
	TagSnippetMatch   = "snippet_match"
	TagSnippetPartial = "snippet_partial"
	TagNameFound      = "name_found"
	TagStateFound     = "state_found"
	TagDescWords      = "desc_words_match"
)

// Signal inspects one record against the lowercased transcript and returns
// an evidence tag, or "" when it finds nothing.
type Signal func(r *model.Record, transcript string) string

// DefaultSignals are tried in order; every one that fires adds its tag
var DefaultSignals = []Signal{
	SnippetSignal,
	NameSignal,
	RegionSignal,
	DescriptionSignal,
}

var descWordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)

const (
	partialWords    = 5
	minPartialWords = 3
	minDescWords    = 3
)

// SnippetSignal matches the intro snippet, falling back to its first five words
func SnippetSignal(r *model.Record, transcript string) string {
	snippet := strings.ToLower(strings.TrimSpace(model.Deref(r.CallerIntroSnippet)))
	if snippet == "" {
		return ""
	}
	if strings.Contains(transcript, snippet) {
		return TagSnippetMatch
	}
	words := strings.Fields(snippet)
	if len(words) > partialWords {
		words = words[:partialWords]
	}
	if len(words) >= minPartialWords && strings.Contains(transcript, strings.Join(words, " ")) {
		return TagSnippetPartial
	}
	return ""
}

// NameSignal matches the caller name
func NameSignal(r *model.Record, transcript string) string {
	return containsField(r.CallerName, transcript, TagNameFound)
}

// RegionSignal matches the resolved state or region
func RegionSignal(r *model.Record, transcript string) string {
	return containsField(r.StateOrRegion, transcript, TagStateFound)
}

// DescriptionSignal needs enough distinct long description words in the transcript
func DescriptionSignal(r *model.Record, transcript string) string {
	desc := strings.ToLower(strings.TrimSpace(r.Description))
	if desc == "" {
		return ""
	}
	seen := make(map[string]bool)
	matches := 0
	for _, w := range descWordRe.FindAllString(desc, -1) {
		if seen[w] {
			continue
		}
		seen[w] = true
		if strings.Contains(transcript, w) {
			matches++
			if matches >= minDescWords {
				return TagDescWords
			}
		}
	}
	return ""
}

func containsField(v *string, transcript, tag string) string {
	s := strings.ToLower(strings.TrimSpace(model.Deref(v)))
	if s != "" && strings.Contains(transcript, s) {
		return tag
	}
	return ""
}

// Verifier applies a list of signals
type Verifier struct {
	signals []Signal
}

// New creates a Verifier; nil signals means DefaultSignals
func New(signals ...Signal) *Verifier {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	return &Verifier{signals: signals}
}

// Summary counts the outcome of one session's verification
type Summary struct {
	Total      int
	Verified   int
	Unverified []*model.Record
}

// Records sets Verified and VerificationEvidence on each record and
// touches nothing else.
func (v *Verifier) Records(records []model.Record, transcript string) Summary {
	lower := strings.ToLower(transcript)
	sum := Summary{Total: len(records)}
	for i := range records {
		r := &records[i]
		v.record(r, lower)
		if r.Verified {
			sum.Verified++
		} else {
			sum.Unverified = append(sum.Unverified, r)
		}
	}
	return sum
}

// Record verifies a single record against a raw transcript
func (v *Verifier) Record(r *model.Record, transcript string) {
	v.record(r, strings.ToLower(transcript))
}

func (v *Verifier) record(r *model.Record, lower string) {
	var tags []string
	for _, sig := range v.signals {
		if tag := sig(r, lower); tag != "" {
			tags = append(tags, tag)
		}
	}
	r.Verified = len(tags) > 0
	if r.Verified {
		r.VerificationEvidence = strings.Join(tags, ",")
	} else {
		r.VerificationEvidence = model.NoEvidence
	}
}

// Percent is the verified share, 0 when there are no records
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Verified) / float64(s.Total) * 100
}
