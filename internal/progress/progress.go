// Package progress projects the remaining work of a run before it starts
// and tracks an ETA while it runs. It reads pipeline state and writes nothing.
package progress

import (
	"fmt"
	"time"

	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
)

// Per-session guesses used when no run history exists
const (
	InputTokensPerSession  = 13000
	OutputTokensPerSession = 2000
	DefaultSessionTime     = 3 * time.Second
	etaWindow              = 10
)

// StatusSource reports where an episode stands in the session lifecycle
type StatusSource interface {
	Status(ep model.Episode, parsed bool) model.SessionStatus
}

// Estimate is the pre-run projection
type Estimate struct {
	Total        int
	Cached       int
	ToProcess    int
	NoTranscript int
	Unavailable  int

	InputTokens  int
	OutputTokens int
	Cost         float64
	PerSession   time.Duration
	Duration     time.Duration
	Model        llm.ModelSpec
}

// Plan counts what a parse run would do. perSession <= 0 uses DefaultSessionTime.
func Plan(episodes []model.Episode, parsed func(id string) bool, transcripts StatusSource, spec llm.ModelSpec, perSession time.Duration) Estimate {
	if perSession <= 0 {
		perSession = DefaultSessionTime
	}
	est := Estimate{Total: len(episodes), Model: spec, PerSession: perSession}

	for _, ep := range episodes {
		switch transcripts.Status(ep, parsed(ep.ID)) {
		case model.StatusParsed:
			est.Cached++
		case model.StatusNotStarted:
			est.NoTranscript++
		case model.StatusFailed:
			est.Unavailable++
		default:
			est.ToProcess++
		}
	}

	est.InputTokens = est.ToProcess * InputTokensPerSession
	est.OutputTokens = est.ToProcess * OutputTokensPerSession
	est.Cost = spec.Cost(est.InputTokens, est.OutputTokens)
	est.Duration = time.Duration(est.ToProcess) * perSession
	return est
}

// Summary renders the estimate as one log line
func (e Estimate) Summary() string {
	if e.ToProcess == 0 {
		return fmt.Sprintf("Parse: all %d episodes already cached or not transcribed, nothing to do", e.Total)
	}
	return fmt.Sprintf("Parse: %d episodes to process (%d cached, %d without transcript, %d unavailable), %s, ~$%.2f (%s)",
		e.ToProcess, e.Cached, e.NoTranscript, e.Unavailable, Humanize(e.Duration), e.Cost, e.Model)
}

// Humanize renders a duration the way the estimate reports it
func Humanize(d time.Duration) string {
	minutes := d.Minutes()
	switch {
	case minutes < 60:
		return fmt.Sprintf("~%.0f min", minutes)
	case minutes < 1440:
		return fmt.Sprintf("~%.1f hours", minutes/60)
	default:
		return fmt.Sprintf("~%.1f days", minutes/1440)
	}
}

// Tracker computes a live ETA from the last few session durations
type Tracker struct {
	total  int
	done   int
	recent []time.Duration
}

// NewTracker tracks a run of total sessions
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// Done records one finished session and returns the count so far and the ETA
func (t *Tracker) Done(elapsed time.Duration) (int, time.Duration) {
	t.done++
	t.recent = append(t.recent, elapsed)
	if len(t.recent) > etaWindow {
		t.recent = t.recent[len(t.recent)-etaWindow:]
	}
	return t.done, t.ETA()
}

// ETA is remaining sessions times the rolling average
func (t *Tracker) ETA() time.Duration {
	if len(t.recent) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range t.recent {
		sum += d
	}
	avg := sum / time.Duration(len(t.recent))
	remaining := t.total - t.done
	if remaining < 0 {
		remaining = 0
	}
	return (time.Duration(remaining) * avg).Truncate(time.Second)
}

// Total is the number of sessions the tracker expects
func (t *Tracker) Total() int {
	return t.total
}
