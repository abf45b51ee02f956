// Package extract turns transcript chunks into candidate call records using
// a text-understanding backend. Backend output is untrusted: every chunk
// yields a ChunkResult that either carries decoded candidates or the reason
// the chunk was skipped.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/casefile/internal/chunk"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/worker"
)

// Options configures an Extractor
type Options struct {
	Model        llm.ModelSpec
	Instructions string
	ChunkChars   int
	Ads          *AdStripper
	Pacer        *worker.Pacer
	Log          *logger.Logger
}

// Extractor runs the per-chunk backend calls for one model
type Extractor struct {
	backend      llm.Backend
	model        llm.ModelSpec
	instructions string
	chunker      *chunk.Chunker
	ads          *AdStripper
	pacer        *worker.Pacer
	log          *logger.Logger
}

// New creates an Extractor over an already constructed backend
func New(backend llm.Backend, opts Options) *Extractor {
	if opts.Pacer == nil {
		opts.Pacer = worker.NewPacer(0, 0)
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Instructions == "" {
		opts.Instructions = Instructions("Monsters Among Us", "Derek Hayes", model.Taxonomy)
	}
	return &Extractor{
		backend:      backend,
		model:        opts.Model,
		instructions: opts.Instructions,
		chunker:      chunk.New(opts.ChunkChars),
		ads:          opts.Ads,
		pacer:        opts.Pacer,
		log:          opts.Log,
	}
}

// FailureKind says which stage of a chunk failed
type FailureKind string

const (
	FailureBackend FailureKind = "backend"
	FailureDecode  FailureKind = "decode"
)

// ChunkResult is the outcome of one chunk: records, or the reason there are none
type ChunkResult struct {
	Index   int
	Start   int
	End     int
	Records []model.Record
	Err     error
	Kind    FailureKind // set only when Err != nil

	InputTokens  int
	OutputTokens int
	Elapsed      time.Duration // backend latency
}

// Failed reports whether the chunk was skipped
func (r ChunkResult) Failed() bool {
	return r.Err != nil
}

// Chunks strips ads and splits text into extraction units
func (e *Extractor) Chunks(text string) []chunk.Chunk {
	return e.chunker.Split(e.ads.Strip(text))
}

// Session extracts every chunk of a session in order. A failed chunk is
// logged and the loop moves on; only context cancellation stops it early.
func (e *Extractor) Session(ctx context.Context, s *model.Session) []ChunkResult {
	log := e.log.WithSession(s.ID, s.Name)
	chunks := e.Chunks(s.Text)

	results := make([]ChunkResult, 0, len(chunks))
	for i, c := range chunks {
		if ctx.Err() != nil {
			break
		}
		res := e.Chunk(ctx, s.Episode, i, c)
		if res.Failed() {
			log.WithField("chunk", fmt.Sprintf("%d/%d", i+1, len(chunks))).
				WithError(res.Err).Errorf("%s error, chunk skipped", res.Kind)
		} else {
			log.Debugf("chunk %d/%d: %d candidates", i+1, len(chunks), len(res.Records))
		}
		results = append(results, res)
	}
	return results
}

// Chunk runs one backend call and decodes its answer. The returned records
// carry the episode context but are otherwise unsanitized.
func (e *Extractor) Chunk(ctx context.Context, ep model.Episode, index int, c chunk.Chunk) ChunkResult {
	res := ChunkResult{Index: index, Start: c.Start, End: c.End}

	if err := e.pacer.Wait(ctx, e.model.Provider); err != nil {
		res.Err, res.Kind = fmt.Errorf("wait for pacer: %w", err), FailureBackend
		return res
	}

	start := time.Now()
	resp, err := e.backend.Complete(ctx, llm.Request{
		Model:        e.model.Model,
		Instructions: e.instructions,
		Content:      UserContent(ep, c.Text),
	})
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err, res.Kind = err, FailureBackend
		_ = e.pacer.Backoff(ctx)
		return res
	}
	res.InputTokens, res.OutputTokens = resp.InputTokens, resp.OutputTokens

	records, err := DecodeRecords(resp.Text)
	if err != nil {
		res.Err, res.Kind = err, FailureDecode
		return res
	}

	for i := range records {
		AttachEpisode(&records[i], ep)
	}
	res.Records = records
	return res
}

// AttachEpisode copies session context onto a record
func AttachEpisode(r *model.Record, ep model.Episode) {
	r.Season = ep.Season
	r.Episode = ep.Number
	r.EpisodeTitle = ep.Name
	r.ReleaseDate = ep.ReleaseDate
}

// Records flattens the records of successful chunks in order
func Records(results []ChunkResult) []model.Record {
	var out []model.Record
	for _, r := range results {
		out = append(out, r.Records...)
	}
	return out
}

// Failures counts skipped chunks
func Failures(results []ChunkResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
