// Package feed builds the episode list from the show's RSS feeds.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/transcript"
	"github.com/ppiankov/casefile/internal/worker"
)

// maxConcurrentFeeds bounds parallel feed downloads
const maxConcurrentFeeds = 4

var (
	// ErrDisallowed means robots.txt forbids fetching the feed
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrNoEpisodes means every configured feed failed or was empty
	ErrNoEpisodes = errors.New("no episodes found in any feed")
)

// Fetcher downloads and parses feeds
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
	maxRetry   time.Duration
	log        *logger.Logger
}

// NewFetcher creates a Fetcher from feed settings
func NewFetcher(cfg model.FeedConfig, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}
	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}
	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBytes,
		maxRetry:   cfg.MaxRetryTime,
		log:        log,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(client, cfg.UserAgent)
	}
	return f
}

// Fetch downloads one feed, retrying transient failures
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, feedURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, feedURL)
		}
	}

	var body []byte
	op := func() error {
		b, err := f.get(ctx, feedURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = f.maxRetry
	notify := func(err error, wait time.Duration) {
		f.log.WithField("feed", feedURL).WithError(err).Warnf("fetch failed, retrying in %s", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feedURL, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedURL, err)
	}
	return parsed, nil
}

func (f *Fetcher) get(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var r io.Reader = resp.Body
	if f.maxBytes > 0 {
		r = io.LimitReader(resp.Body, f.maxBytes)
	}
	return io.ReadAll(r)
}

// Episodes fetches every feed concurrently and merges their items in feed
// order. A failing feed is logged and skipped; titles already seen in an
// earlier feed are dropped.
func (f *Fetcher) Episodes(ctx context.Context, feedURLs []string) ([]model.Episode, error) {
	tasks := make([]worker.Task[*gofeed.Feed], len(feedURLs))
	for i, u := range feedURLs {
		tasks[i] = func(ctx context.Context) (*gofeed.Feed, error) {
			return f.Fetch(ctx, u)
		}
	}
	outcomes := worker.Run(ctx, min(len(feedURLs), maxConcurrentFeeds), tasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var episodes []model.Episode
	for _, o := range outcomes {
		u := feedURLs[o.Index]
		log := f.log.WithField("feed", u)
		if o.Err != nil {
			log.WithError(o.Err).Warn("feed skipped")
			continue
		}

		added := 0
		for _, item := range o.Value.Items {
			if item == nil || seen[item.Title] {
				continue
			}
			seen[item.Title] = true
			episodes = append(episodes, EpisodeFromItem(item, u))
			added++
		}
		log.Infof("%d items, %d new episodes", len(o.Value.Items), added)
	}

	if len(episodes) == 0 {
		return nil, ErrNoEpisodes
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].ReleaseDate < episodes[j].ReleaseDate
	})
	return episodes, nil
}

// EpisodeFromItem maps one feed item onto an episode list entry
func EpisodeFromItem(item *gofeed.Item, feedURL string) model.Episode {
	ep := model.Episode{
		ID:         EpisodeID(item.Title),
		Name:       item.Title,
		AudioURL:   CleanAudioURL(audioURL(item)),
		FeedSource: truncate(feedURL, 40),
	}

	ep.ReleaseDate = item.Published
	if item.PublishedParsed != nil {
		ep.ReleaseDate = item.PublishedParsed.UTC().Format("2006-01-02")
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	ep.Description = CleanDescription(desc)

	ep.Season, ep.Number = ParseSeasonEpisode(item.Title)
	if it := item.ITunesExt; it != nil {
		ep.Duration = formatDuration(it.Duration)
		if ep.Season == nil {
			ep.Season = atoiPtr(it.Season)
		}
		if ep.Number == nil {
			ep.Number = atoiPtr(it.Episode)
		}
	}
	return ep
}

func audioURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
	}
	for _, link := range item.Links {
		if strings.HasSuffix(strings.ToLower(link), ".mp3") {
			return link
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Load returns the cached episode list, fetching and caching it first when
// it is missing or refresh is set.
func (f *Fetcher) Load(ctx context.Context, path string, feedURLs []string, refresh bool) ([]model.Episode, error) {
	if !refresh {
		episodes, err := transcript.LoadEpisodes(path)
		if err == nil {
			f.log.Infof("loaded %d episodes from cache", len(episodes))
			return episodes, nil
		}
		if !errors.Is(err, transcript.ErrNoEpisodeList) {
			return nil, err
		}
	}

	episodes, err := f.Episodes(ctx, feedURLs)
	if err != nil {
		return nil, err
	}
	if err := transcript.SaveEpisodes(path, episodes); err != nil {
		return nil, fmt.Errorf("cache episode list: %w", err)
	}
	f.log.Infof("total unique episodes: %d", len(episodes))
	return episodes, nil
}
