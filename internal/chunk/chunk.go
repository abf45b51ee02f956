// Package chunk splits long transcripts into model-sized pieces at points
// where the host typically moves from one caller to the next.
package chunk

import (
	"regexp"
	"unicode/utf8"
)

// lookahead is how far past the budget markers are searched for
const lookahead = 5000

// DefaultMarkers open or close a narrated segment in this show's transcripts
var DefaultMarkers = []*regexp.Regexp{
	regexp.MustCompile(`Now (?:folks|gang|working|from|moving|I also)`),
	regexp.MustCompile(`(?:Alright|All right),? (?:gang|folks)`),
	regexp.MustCompile(`(?:Thank you|Thanks),? .{1,30}(?:for (?:calling|sharing|ringing))`),
}

// Chunk is a contiguous slice of a session's text. Start and End are byte
// offsets into the text the chunk was cut from.
type Chunk struct {
	Start int
	End   int
	Text  string
}

// Chunker splits text into chunks of at most MaxChars bytes. The budget is
// counted in bytes, not runes, and cuts land on rune boundaries; a single
// rune wider than the budget becomes a chunk of its own and exceeds it.
type Chunker struct {
	MaxChars int
	Markers  []*regexp.Regexp
}

// New creates a Chunker using the default transition markers
func New(maxChars int) *Chunker {
	return &Chunker{MaxChars: maxChars, Markers: DefaultMarkers}
}

// Split splits the whole text.
func (c *Chunker) Split(text string) []Chunk {
	return c.SplitFrom(text, 0)
}

// SplitFrom splits text[offset:]. Offsets in the returned chunks are
// relative to text, so a run can resume from any previous chunk boundary.
func (c *Chunker) SplitFrom(text string, offset int) []Chunk {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	var chunks []Chunk
	for c.MaxChars > 0 && len(text)-offset > c.MaxChars {
		cut := c.cutPoint(text[offset:])
		chunks = append(chunks, Chunk{Start: offset, End: offset + cut, Text: text[offset : offset+cut]})
		offset += cut
	}
	if offset < len(text) || len(chunks) == 0 {
		chunks = append(chunks, Chunk{Start: offset, End: len(text), Text: text[offset:]})
	}
	return chunks
}

// cutPoint picks where the next chunk of remaining ends: the marker start
// nearest the budget inside (MaxChars/2, MaxChars), else a hard cut at the
// budget moved back to a rune boundary.
func (c *Chunker) cutPoint(remaining string) int {
	limit := c.MaxChars
	window := remaining
	if len(window) > limit+lookahead {
		window = window[:limit+lookahead]
	}

	best := -1
	for _, re := range c.Markers {
		for _, loc := range re.FindAllStringIndex(window, -1) {
			start := loc[0]
			if start*2 > limit && start < limit && start > best {
				best = start
			}
		}
	}
	if best > 0 {
		return best
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(remaining[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(remaining)
		cut = size
	}
	return cut
}

// Split is a convenience wrapper around New(maxChars).Split(text).
func Split(text string, maxChars int) []Chunk {
	return New(maxChars).Split(text)
}
