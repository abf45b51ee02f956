// Package pipeline orchestrates a parse run: for each episode it either
// loads the session checkpoint or extracts, sanitizes, verifies, timestamps
// and scores a fresh one, then numbers every record across the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/casefile/internal/checkpoint"
	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/ledger"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/metrics"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/progress"
	"github.com/ppiankov/casefile/internal/sanitize"
	"github.com/ppiankov/casefile/internal/sentiment"
	"github.com/ppiankov/casefile/internal/timestamp"
	"github.com/ppiankov/casefile/internal/transcript"
	"github.com/ppiankov/casefile/internal/verify"
	"github.com/ppiankov/casefile/internal/worker"
)

// maxUnverifiedExamples bounds the unverified records logged per session
const maxUnverifiedExamples = 3

// Pipeline runs the extraction pipeline for one model
type Pipeline struct {
	cfg         *model.Config
	spec        llm.ModelSpec
	backend     llm.Backend
	extractor   *extract.Extractor
	ads         *extract.AdStripper
	sanitizer   *sanitize.Sanitizer
	verifier    *verify.Verifier
	resolver    *timestamp.Resolver
	scorer      sentiment.Scorer
	checkpoints *checkpoint.Store
	transcripts *transcript.Store
	pacer       *worker.Pacer
	regionPacer *worker.Pacer
	ledger      *ledger.Ledger
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLedger records every parsed session in the run ledger
func WithLedger(l *ledger.Ledger) Option {
	return func(p *Pipeline) { p.ledger = l }
}

// WithMetrics counts sessions, chunks and records
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithScorer replaces the VADER scorer; nil disables scoring
func WithScorer(s sentiment.Scorer) Option {
	return func(p *Pipeline) { p.scorer = s }
}

// WithPacers replaces the extraction and region repair pacers
func WithPacers(extraction, regions *worker.Pacer) Option {
	return func(p *Pipeline) {
		p.pacer = extraction
		p.regionPacer = regions
	}
}

// New resolves the configured backend and wires every stage. A missing
// credential or a bad ad pattern fails here, before any session is touched.
func New(cfg *model.Config, clients *llm.Clients, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = logger.Discard()
	}
	spec, backend, err := clients.Resolve(cfg.LLM.API)
	if err != nil {
		return nil, fmt.Errorf("resolve backend: %w", err)
	}
	ads, err := extract.NewAdStripper(cfg.Pipeline.AdPatterns)
	if err != nil {
		return nil, err
	}
	checkpoints, err := checkpoint.New(cfg.ParsedDir())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:         cfg,
		spec:        spec,
		backend:     backend,
		ads:         ads,
		sanitizer:   sanitize.New(sanitize.OptionsFromConfig(cfg.Sanitize)),
		verifier:    verify.New(),
		resolver:    timestamp.NewResolver(),
		scorer:      sentiment.NewVader(),
		checkpoints: checkpoints,
		transcripts: transcript.NewStore(cfg.TranscriptsDir()),
		pacer:       worker.NewPacer(cfg.Pipeline.Cooldown, cfg.Pipeline.ErrorBackoff),
		regionPacer: worker.NewPacer(cfg.Pipeline.RegionCooldown, cfg.Pipeline.ErrorBackoff),
		log:         log,
	}
	for _, opt := range opts {
		opt(p)
	}
	for provider, d := range cfg.Pipeline.ProviderCooldowns {
		p.pacer.SetProviderInterval(provider, d)
		p.regionPacer.SetProviderInterval(provider, d)
	}

	p.extractor = extract.New(backend, extract.Options{
		Model:        spec,
		Instructions: extract.Instructions(cfg.Pipeline.ShowName, cfg.Pipeline.HostName, model.Taxonomy),
		ChunkChars:   cfg.Pipeline.ChunkChars,
		Ads:          ads,
		Pacer:        p.pacer,
		Log:          log,
	})
	return p, nil
}

// Model is the resolved model
func (p *Pipeline) Model() llm.ModelSpec {
	return p.spec
}

// Checkpoints exposes the checkpoint store
func (p *Pipeline) Checkpoints() *checkpoint.Store {
	return p.checkpoints
}

// Result summarizes a parse run
type Result struct {
	Records      []model.Record // every record of the run, instance-numbered
	Parsed       int
	Cached       int
	Missing      int
	Unavailable  int
	Failed       int
	FailedChunks int

	// Statuses is the lifecycle state every episode reached in this run
	Statuses map[string]model.SessionStatus
}

// Parse walks episodes in order. Checkpointed sessions are loaded, never
// re-extracted; at most limit fresh sessions are parsed (0 means no limit).
// Cancelling ctx stops the run after the current chunk and leaves the
// in-flight session without a checkpoint.
func (p *Pipeline) Parse(ctx context.Context, episodes []model.Episode, limit int) (*Result, error) {
	run := p.log.WithRun().WithField("model", p.spec.Alias)
	run.Debugf("backend calls at least %s apart", p.pacer.Interval(p.spec.Provider))

	est := Estimate(episodes, p.checkpoints, p.transcripts, p.spec, p.ledger)
	run.Info(est.Summary())

	planned := est.ToProcess
	if limit > 0 && limit < planned {
		planned = limit
	}
	tracker := progress.NewTracker(planned)

	res := &Result{Statuses: make(map[string]model.SessionStatus, len(episodes))}
	instance := 0
	for _, ep := range episodes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log := run.WithSession(ep.ID, ep.Name)

		if p.checkpoints.Has(ep.ID) {
			records, err := p.checkpoints.Load(ep.ID)
			if err != nil {
				log.WithError(err).Error("checkpoint unreadable, session skipped")
				res.Statuses[ep.ID] = model.StatusFailed
				res.Failed++
				p.countSession(metrics.OutcomeFailed)
				continue
			}
			number(records, &instance)
			res.Records = append(res.Records, records...)
			res.Statuses[ep.ID] = model.StatusParsed
			res.Cached++
			p.countSession(metrics.OutcomeCached)
			continue
		}

		if limit > 0 && res.Parsed >= limit {
			res.Statuses[ep.ID] = p.transcripts.Status(ep, false)
			continue
		}

		sess, err := p.transcripts.Session(ep)
		if err != nil {
			if errors.Is(err, transcript.ErrNoTranscript) {
				log.Debug("no transcript yet")
				res.Statuses[ep.ID] = model.StatusNotStarted
				res.Missing++
				p.countSession(metrics.OutcomeMissing)
			} else {
				log.WithError(err).Error("transcript unreadable, session skipped")
				res.Statuses[ep.ID] = model.StatusFailed
				res.Failed++
				p.countSession(metrics.OutcomeFailed)
			}
			continue
		}
		if sess.Unavailable() {
			log.Info("transcript unavailable, session skipped")
			sess.Status = model.StatusFailed
			res.Statuses[ep.ID] = sess.Status
			res.Unavailable++
			p.countSession(metrics.OutcomeUnavailable)
			continue
		}

		start := time.Now()
		records, stats, err := p.Session(ctx, sess, log)
		if err != nil {
			return res, err
		}
		number(records, &instance)

		if err := p.checkpoints.Save(ep.ID, records); err != nil {
			log.WithError(err).Error("checkpoint write failed")
			sess.Status = model.StatusFailed
			res.Statuses[ep.ID] = sess.Status
			res.Failed++
			p.countSession(metrics.OutcomeFailed)
			continue
		}
		sess.Status = model.StatusParsed
		res.Statuses[ep.ID] = sess.Status
		elapsed := time.Since(start)
		res.Records = append(res.Records, records...)
		res.Parsed++
		res.FailedChunks += stats.FailedChunks
		p.finish(ep.ID, elapsed, len(records), stats, log)

		done, eta := tracker.Done(elapsed)
		log.Infof("[%d/%d] %d calls, %.1fs, ETA %s", done, tracker.Total(), len(records), elapsed.Seconds(), eta)
	}

	run.Infof("parse complete: %d parsed, %d cached, %d without transcript, %d unavailable, %d failed, %d records",
		res.Parsed, res.Cached, res.Missing, res.Unavailable, res.Failed, len(res.Records))
	return res, nil
}

// SessionStats describes one freshly parsed session
type SessionStats struct {
	Chunks       int
	FailedChunks int
	Verified     int
	Timestamped  int
}

// Session runs every stage for one transcript and returns its records,
// not yet instance-numbered. It returns an error only when ctx ends.
func (p *Pipeline) Session(ctx context.Context, sess *model.Session, log *logger.Logger) ([]model.Record, SessionStats, error) {
	results := p.extractor.Session(ctx, sess)
	if err := ctx.Err(); err != nil {
		return nil, SessionStats{}, err
	}
	stats := SessionStats{Chunks: len(results), FailedChunks: extract.Failures(results)}
	p.countChunks(results)

	records := extract.Records(results)
	for i := range records {
		p.sanitizer.Record(&records[i])
	}

	// verification reads the transcript as transcribed, ads included
	summary := p.verifier.Records(records, sess.Text)
	stats.Verified = summary.Verified
	log.Infof("verified %d/%d calls (%.0f%%)", summary.Verified, summary.Total, summary.Percent())
	for i, r := range summary.Unverified {
		if i == maxUnverifiedExamples {
			break
		}
		log.Warnf("unverified: %s: %s", nameOrAnonymous(r), truncate(r.Description, 80))
	}

	stats.Timestamped = p.resolver.Records(records, p.timeIndex(sess, log))
	sentiment.Apply(p.scorer, records)

	if records == nil {
		records = []model.Record{}
	}
	return records, stats, nil
}

// timeIndex attaches the session's segments and indexes them. A missing or
// unreadable time index leaves every call start time null.
func (p *Pipeline) timeIndex(sess *model.Session, log *logger.Logger) *timestamp.Index {
	segments, err := p.transcripts.Segments(sess.ID)
	if err != nil {
		log.WithError(err).Warn("time index unreadable, call start times left empty")
		return nil
	}
	sess.Segments = segments
	if segments == nil {
		return nil
	}
	return timestamp.NewIndex(segments)
}

func (p *Pipeline) finish(id string, elapsed time.Duration, records int, stats SessionStats, log *logger.Logger) {
	if p.metrics != nil {
		p.metrics.RecordSessionDone(elapsed, records, stats.Verified)
	}
	if p.ledger == nil {
		return
	}
	err := p.ledger.Record(ledger.Run{
		SessionID:    id,
		Model:        p.spec.Alias,
		Elapsed:      elapsed,
		Chunks:       stats.Chunks,
		FailedChunks: stats.FailedChunks,
		Records:      records,
		Verified:     stats.Verified,
	})
	if err != nil {
		log.WithError(err).Warn("ledger write failed")
	}
}

func (p *Pipeline) countSession(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordSession(outcome)
	}
}

func (p *Pipeline) countChunks(results []extract.ChunkResult) {
	if p.metrics == nil {
		return
	}
	for _, r := range results {
		outcome := metrics.ChunkOK
		if r.Failed() {
			outcome = string(r.Kind)
		}
		p.metrics.RecordChunk(p.spec.Provider, outcome, r.Elapsed, r.InputTokens, r.OutputTokens)
	}
}

// number assigns run-wide instance numbers in order
func number(records []model.Record, next *int) {
	for i := range records {
		*next++
		records[i].Instance = *next
	}
}

// Estimate projects a parse run without touching a backend. When a ledger
// is given its recent average replaces the fixed per-session guess.
func Estimate(episodes []model.Episode, checkpoints *checkpoint.Store, transcripts *transcript.Store, spec llm.ModelSpec, l *ledger.Ledger) progress.Estimate {
	var perSession time.Duration
	if l != nil {
		if avg, err := l.AverageSessionTime(spec.Alias, 0); err == nil {
			perSession = avg
		}
	}
	return progress.Plan(episodes, checkpoints.Has, transcripts, spec, perSession)
}

func nameOrAnonymous(r *model.Record) string {
	if r.CallerName == nil {
		return "Anonymous"
	}
	return *r.CallerName
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
