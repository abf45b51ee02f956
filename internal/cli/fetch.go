package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casefile/internal/checkpoint"
	"github.com/ppiankov/casefile/internal/feed"
	"github.com/ppiankov/casefile/internal/pipeline"
)

var (
	fetchRefresh bool
	fetchURLs    []string
	resetParsed  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Build the episode list from the configured RSS feeds",
	Long: `Fetch every configured RSS feed, merge the items into one episode list
sorted by release date, and cache it in the data directory. A cached list is
reused unless --refresh is given.`,
	RunE: runFetch,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every checkpointed call to a versioned spreadsheet",
	RunE:  runExport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete checkpoints, or with no flags all derived data",
	Long: `Delete derived data so the next run starts fresh.

  --parsed   delete checkpoints and region markers only
  (default)  also delete transcripts, audio and the cached episode list`,
	RunE: runReset,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "ignore a cached episode list")
	fetchCmd.Flags().StringSliceVar(&fetchURLs, "url", nil, "feed URL (repeatable, replaces configured feeds)")
	resetCmd.Flags().BoolVar(&resetParsed, "parsed", false, "delete checkpoints only")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	urls := rt.cfg.Feed.URLs
	if len(fetchURLs) > 0 {
		urls = fetchURLs
	}

	ctx, stop := signalContext()
	defer stop()

	episodes, err := feed.NewFetcher(rt.cfg.Feed, rt.log).Load(ctx, rt.cfg.EpisodeListPath(), urls, fetchRefresh)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d episodes in %s\n", len(episodes), rt.cfg.EpisodeListPath())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	episodes, err := loadEpisodes(rt.cfg)
	if err != nil {
		return err
	}
	store, err := checkpoint.New(rt.cfg.ParsedDir())
	if err != nil {
		return err
	}
	records, err := pipeline.Collect(store, episodes, rt.log)
	if err != nil {
		return err
	}
	return writeExport(rt.cfg, records)
}

func runReset(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	scope := pipeline.ResetAll
	if resetParsed {
		scope = pipeline.ResetParsed
	}
	if err := pipeline.Reset(rt.cfg, scope, rt.log); err != nil {
		return err
	}
	if resetParsed {
		fmt.Println("✓ Checkpoints deleted")
	} else {
		fmt.Println("✓ Derived data deleted")
	}
	return nil
}
