package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casefile/internal/checkpoint"
	"github.com/ppiankov/casefile/internal/export"
	"github.com/ppiankov/casefile/internal/feed"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/progress"
	"github.com/ppiankov/casefile/internal/transcript"
)

var (
	parseLimit int
	runLimit   int
	runRefresh bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract call records from every transcribed episode",
	Long: `Extract call records from every transcribed episode in the episode list.

Episodes with a checkpoint are loaded, not re-extracted. Episodes without a
transcript are skipped and picked up on a later run.`,
	RunE: runParse,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the episode list, parse, and export",
	RunE:  runAll,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Project sessions, tokens, cost and time of the next parse",
	RunE:  runEstimate,
}

var regionsCmd = &cobra.Command{
	Use:   "reparse-regions",
	Short: "Re-ask the model where each checkpointed call took place",
	Long: `Re-ask the model where each checkpointed call took place and patch only the
country, state and city of every record. Sessions already repaired are skipped.`,
	RunE: runRegions,
}

func init() {
	parseCmd.Flags().IntVar(&parseLimit, "limit", 0, "parse at most N new episodes (0 = all)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "parse at most N new episodes (0 = all)")
	runCmd.Flags().BoolVar(&runRefresh, "refresh", false, "re-fetch feeds even when an episode list is cached")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(regionsCmd)
}

func newPipeline(rt *app) (*pipeline.Pipeline, error) {
	clients := llm.NewClients(llm.ConfigsFromModel(rt.cfg.LLM))
	var opts []pipeline.Option
	if rt.ledger != nil {
		opts = append(opts, pipeline.WithLedger(rt.ledger))
	}
	if rt.metrics != nil {
		opts = append(opts, pipeline.WithMetrics(rt.metrics))
	}
	return pipeline.New(rt.cfg, clients, rt.log, opts...)
}

func loadEpisodes(cfg *model.Config) ([]model.Episode, error) {
	episodes, err := transcript.LoadEpisodes(cfg.EpisodeListPath())
	if errors.Is(err, transcript.ErrNoEpisodeList) {
		return nil, fmt.Errorf("%w: run 'casefile fetch' first", err)
	}
	return episodes, err
}

func runParse(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	episodes, err := loadEpisodes(rt.cfg)
	if err != nil {
		return err
	}
	p, err := newPipeline(rt)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	res, err := p.Parse(ctx, episodes, parseLimit)
	if err != nil {
		return fmt.Errorf("parse interrupted after %d sessions: %w", res.Parsed, err)
	}
	printParseResult(res)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := newPipeline(rt)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	episodes, err := feed.NewFetcher(rt.cfg.Feed, rt.log).Load(ctx, rt.cfg.EpisodeListPath(), rt.cfg.Feed.URLs, runRefresh)
	if err != nil {
		return err
	}
	res, err := p.Parse(ctx, episodes, runLimit)
	if err != nil {
		return fmt.Errorf("parse interrupted after %d sessions: %w", res.Parsed, err)
	}
	printParseResult(res)

	return writeExport(rt.cfg, res.Records)
}

func printParseResult(res *pipeline.Result) {
	fmt.Printf("✓ %d calls from %d parsed and %d cached episodes\n", len(res.Records), res.Parsed, res.Cached)
	if res.Missing > 0 || res.Unavailable > 0 {
		fmt.Printf("  %d episodes without a transcript, %d unavailable\n", res.Missing, res.Unavailable)
	}
	if res.Failed > 0 || res.FailedChunks > 0 {
		fmt.Fprintf(os.Stderr, "  %d sessions failed, %d chunks failed (see log)\n", res.Failed, res.FailedChunks)
	}
}

func writeExport(cfg *model.Config, records []model.Record) error {
	opts := export.Options{Sheet: cfg.Export.Sheet, DomesticCountry: cfg.Sanitize.DomesticCountry}
	path, err := export.Write(cfg.ExportPath(), records, opts)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d calls to %s\n", len(records), path)
	return nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	spec, err := llm.Lookup(rt.cfg.LLM.API)
	if err != nil {
		return err
	}
	episodes, err := loadEpisodes(rt.cfg)
	if err != nil {
		return err
	}
	checkpoints, err := checkpoint.New(rt.cfg.ParsedDir())
	if err != nil {
		return err
	}

	est := pipeline.Estimate(episodes, checkpoints, transcript.NewStore(rt.cfg.TranscriptsDir()), spec, rt.ledger)
	fmt.Println(est.Summary())
	fmt.Printf("  episodes:      %d (%d cached, %d without transcript, %d unavailable)\n",
		est.Total, est.Cached, est.NoTranscript, est.Unavailable)
	fmt.Printf("  tokens:        ~%d in, ~%d out\n", est.InputTokens, est.OutputTokens)
	fmt.Printf("  per session:   %.1fs\n", est.PerSession.Seconds())
	if est.ToProcess > 0 {
		fmt.Printf("  time:          %s\n", progress.Humanize(est.Duration))
	}
	return nil
}

func runRegions(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := newPipeline(rt)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	res, err := p.Regions(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Regions: %d/%d records updated across %d sessions (%d sessions already done, %d failed)\n",
		res.Updated, res.Total, res.Sessions, res.Skipped, res.Failed)
	return nil
}
