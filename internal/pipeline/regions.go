package pipeline

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/transcript"
)

// Excerpt window around a caller's snippet, in bytes of ad-stripped text
const (
	excerptBefore = 200
	excerptAfter  = 1300
	snippetLead   = 50 // runes of the snippet used to find the caller
)

// Region repair results, also the metrics label values
const (
	RegionUpdated = "updated"
	RegionFailed  = "failed"
)

// RegionResult summarizes a region repair run
type RegionResult struct {
	Sessions int // sessions rewritten
	Skipped  int // sessions already repaired
	Total    int // records sent to the backend
	Updated  int
	Failed   int
}

// Regions re-asks the backend where each checkpointed call took place and
// patches only country, state_or_region and city. A session is rewritten
// and marked only when at least one record was updated; marked sessions
// are skipped on later runs.
func (p *Pipeline) Regions(ctx context.Context) (*RegionResult, error) {
	run := p.log.WithRun().WithField("model", p.spec.Alias)
	ids, err := p.checkpoints.IDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		run.Warn("no checkpoints found, run parse first")
		return &RegionResult{}, nil
	}

	res := &RegionResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log := run.WithField("session", id)

		if p.checkpoints.RegionsDone(id) {
			res.Skipped++
			continue
		}
		records, err := p.checkpoints.Load(id)
		if err != nil {
			log.WithError(err).Error("checkpoint unreadable, session skipped")
			continue
		}
		if len(records) == 0 {
			continue
		}
		sess, err := p.transcripts.Session(model.Episode{ID: id})
		if err != nil {
			if !errors.Is(err, transcript.ErrNoTranscript) {
				log.WithError(err).Error("transcript unreadable, session skipped")
			}
			continue
		}
		if sess.Unavailable() {
			continue
		}
		clean := p.ads.Strip(sess.Text)

		changed := false
		for i := range records {
			r := &records[i]
			res.Total++
			loc, err := p.locate(ctx, r, clean)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.WithError(err).Errorf("region repair failed for %s", nameOrAnonymous(r))
				res.Failed++
				p.countRegion(RegionFailed)
				continue
			}
			r.Country, r.StateOrRegion, r.City = loc.Country, loc.StateOrRegion, loc.City
			p.sanitizer.Location(r)
			res.Updated++
			p.countRegion(RegionUpdated)
			changed = true
		}

		if !changed {
			continue
		}
		if err := p.checkpoints.Save(id, records); err != nil {
			log.WithError(err).Error("checkpoint write failed")
			continue
		}
		if err := p.checkpoints.MarkRegions(id); err != nil {
			log.WithError(err).Warn("region marker write failed")
		}
		res.Sessions++
	}

	run.Infof("region repair complete: %d/%d calls updated, %d sessions already done",
		res.Updated, res.Total, res.Skipped)
	return res, nil
}

func (p *Pipeline) locate(ctx context.Context, r *model.Record, clean string) (extract.Location, error) {
	if err := p.regionPacer.Wait(ctx, p.spec.Provider); err != nil {
		return extract.Location{}, err
	}
	content := extract.RegionContent(model.Deref(r.CallerName), r.Description, Excerpt(clean, r))
	resp, err := p.backend.Complete(ctx, llm.Request{
		Model:        p.spec.Model,
		Instructions: extract.RegionInstructions,
		Content:      content,
		MaxTokens:    300,
	})
	if err != nil {
		_ = p.regionPacer.Backoff(ctx)
		return extract.Location{}, err
	}
	return extract.DecodeLocation(resp.Text)
}

// Excerpt returns the slice of clean text around a record's intro
// snippet, or the description when the snippet cannot be found.
func Excerpt(clean string, r *model.Record) string {
	snippet := strings.ToLower(model.Deref(r.CallerIntroSnippet))
	if snippet != "" {
		if rs := []rune(snippet); len(rs) > snippetLead {
			snippet = string(rs[:snippetLead])
		}
		lower := strings.ToLower(clean)
		// lowering can change byte lengths outside ASCII; offsets only
		// carry over when it did not
		if idx := strings.Index(lower, snippet); idx >= 0 && len(lower) == len(clean) {
			start := runeFloor(clean, max(0, idx-excerptBefore))
			end := runeFloor(clean, min(len(clean), idx+excerptAfter))
			return clean[start:end]
		}
	}
	return r.Description
}

// runeFloor moves i back to the start of the rune it points into
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func (p *Pipeline) countRegion(result string) {
	if p.metrics != nil {
		p.metrics.RecordRegionRepair(result)
	}
}
