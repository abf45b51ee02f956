// Package sentiment scores call descriptions with VADER: compound score
// plus positive, negative and neutral proportions.
package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/ppiankov/casefile/internal/model"
)

// Scores are the four sentiment columns, each rounded to four decimals
type Scores struct {
	Compound float64
	Pos      float64
	Neg      float64
	Neu      float64
}

// Scorer scores free text. ok is false when the text carries nothing to score.
type Scorer interface {
	Score(text string) (Scores, bool)
}

// Vader is the default scorer
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader loads the VADER lexicon
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score implements Scorer
func (v *Vader) Score(text string) (Scores, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Scores{}, false
	}
	s := v.analyzer.PolarityScores(text)
	return Scores{
		Compound: round4(s.Compound),
		Pos:      round4(s.Positive),
		Neg:      round4(s.Negative),
		Neu:      round4(s.Neutral),
	}, true
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}

// Apply scores each record's description; records without one get nulls
func Apply(s Scorer, records []model.Record) {
	for i := range records {
		r := &records[i]
		r.SentimentCompound, r.SentimentPos, r.SentimentNeg, r.SentimentNeu = nil, nil, nil, nil
		if s == nil {
			continue
		}
		sc, ok := s.Score(r.Description)
		if !ok {
			continue
		}
		r.SentimentCompound = &sc.Compound
		r.SentimentPos = &sc.Pos
		r.SentimentNeg = &sc.Neg
		r.SentimentNeu = &sc.Neu
	}
}
