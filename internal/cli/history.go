package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casefile/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id...]",
	Short: "Show recorded parse runs from the run ledger",
	Long: `Show how many session runs the ledger holds and the recent average
session time for the selected model. With session ids, list every recorded
run of those sessions, newest first.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.ledger == nil {
		return errors.New("run ledger is disabled or unavailable (ledger.enabled)")
	}
	return printHistory(os.Stdout, rt.ledger, rt.cfg.LLM.API, args)
}

func printHistory(w io.Writer, l *ledger.Ledger, model string, sessionIDs []string) error {
	n, err := l.Count()
	if err != nil {
		return err
	}
	avg, err := l.AverageSessionTime(model, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d runs recorded\n", n)
	if avg > 0 {
		fmt.Fprintf(w, "%s: %.1fs per session (recent average)\n", model, avg.Seconds())
	}

	for _, id := range sessionIDs {
		runs, err := l.Runs(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s: %d runs\n", id, len(runs))
		for _, r := range runs {
			fmt.Fprintf(w, "  %s  %-12s %6.1fs  %d/%d chunks ok  %d calls, %d verified\n",
				r.FinishedAt.Format(time.DateTime), r.Model, r.Elapsed.Seconds(),
				r.Chunks-r.FailedChunks, r.Chunks, r.Records, r.Verified)
		}
	}
	return nil
}
