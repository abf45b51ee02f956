// Package timestamp locates records inside a session's time index to give
// each one an approximate start time. Matching is textual and best effort.
package timestamp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

type span struct {
	start, end int
	label      string
}

// Index is the flattened lowercase text of a time index plus the byte
// range each segment occupies in it.
type Index struct {
	text  string
	spans []span
}

// NewIndex flattens segments once; each segment is followed by one space
func NewIndex(segments []model.Segment) *Index {
	var b strings.Builder
	spans := make([]span, 0, len(segments))
	for _, seg := range segments {
		start := b.Len()
		b.WriteString(strings.ToLower(seg.Text))
		b.WriteByte(' ')
		spans = append(spans, span{start: start, end: b.Len(), label: seg.StartHMS})
	}
	return &Index{text: b.String(), spans: spans}
}

// ReadSegments decodes a <id>_timestamps.json file. A missing file is not
// an error: it returns nil segments, and a nil index resolves every record
// to null.
func ReadSegments(path string) ([]model.Segment, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read time index: %w", err)
	}
	var segments []model.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("decode time index %s: %w", path, err)
	}
	return segments, nil
}

// Text returns the flattened lowercase text
func (ix *Index) Text() string {
	return ix.text
}

// LabelAt returns the start label of the segment containing offset
func (ix *Index) LabelAt(offset int) (string, bool) {
	if offset < 0 {
		return "", false
	}
	i := sort.Search(len(ix.spans), func(i int) bool { return ix.spans[i].end > offset })
	if i < len(ix.spans) && ix.spans[i].start <= offset {
		return ix.spans[i].label, true
	}
	return "", false
}

// Matcher finds where a record starts in the flattened text, or -1
type Matcher func(r *model.Record, text string) int

// DefaultMatchers are tried in order; the first hit wins
var DefaultMatchers = []Matcher{
	FullSnippet,
	SnippetPrefix(6),
	NameAnchors,
}

// FullSnippet searches for the whole intro snippet
func FullSnippet(r *model.Record, text string) int {
	snippet := normalizedSnippet(r)
	if snippet == "" {
		return -1
	}
	return strings.Index(text, snippet)
}

// SnippetPrefix searches for the first n words of the intro snippet
func SnippetPrefix(n int) Matcher {
	return func(r *model.Record, text string) int {
		words := strings.Fields(normalizedSnippet(r))
		if len(words) == 0 {
			return -1
		}
		if len(words) > n {
			words = words[:n]
		}
		return strings.Index(text, strings.Join(words, " "))
	}
}

var genericNames = map[string]bool{
	"anonymous": true,
	"caller":    true,
	"unknown":   true,
	"listener":  true,
}

var namePhrases = []string{"this is %s", "my name is %s", "call me %s"}

// NameAnchors searches for self-introductions using the caller name
func NameAnchors(r *model.Record, text string) int {
	name := strings.ToLower(strings.TrimSpace(model.Deref(r.CallerName)))
	if name == "" || genericNames[name] {
		return -1
	}
	for _, p := range namePhrases {
		if idx := strings.Index(text, fmt.Sprintf(p, name)); idx >= 0 {
			return idx
		}
	}
	return -1
}

func normalizedSnippet(r *model.Record) string {
	return strings.ToLower(strings.TrimSpace(model.Deref(r.CallerIntroSnippet)))
}

// Resolver assigns call_start_time
type Resolver struct {
	matchers []Matcher
}

// NewResolver creates a Resolver; no matchers means DefaultMatchers
func NewResolver(matchers ...Matcher) *Resolver {
	if len(matchers) == 0 {
		matchers = DefaultMatchers
	}
	return &Resolver{matchers: matchers}
}

// Records sets CallStartTime on each record and returns how many resolved.
// A nil index clears every time.
func (res *Resolver) Records(records []model.Record, ix *Index) int {
	resolved := 0
	for i := range records {
		records[i].CallStartTime = res.locate(&records[i], ix)
		if records[i].CallStartTime != nil {
			resolved++
		}
	}
	return resolved
}

func (res *Resolver) locate(r *model.Record, ix *Index) *string {
	if ix == nil {
		return nil
	}
	for _, m := range res.matchers {
		idx := m(r, ix.text)
		if idx < 0 {
			continue
		}
		if label, ok := ix.LabelAt(idx); ok {
			return &label
		}
		return nil
	}
	return nil
}
