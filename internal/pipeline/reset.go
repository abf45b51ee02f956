package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ppiankov/casefile/internal/checkpoint"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/transcript"
)

// ResetScope selects what Reset deletes
type ResetScope int

const (
	// ResetParsed drops checkpoints and region markers only
	ResetParsed ResetScope = iota
	// ResetAll also drops transcripts, audio and the episode list cache
	ResetAll
)

// Reset clears pipeline state so the next run starts fresh. It needs no
// backend, so it works without credentials.
func Reset(cfg *model.Config, scope ResetScope, log *logger.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	checkpoints, err := checkpoint.New(cfg.ParsedDir())
	if err != nil {
		return err
	}
	n, err := checkpoints.Reset()
	if err != nil {
		return fmt.Errorf("reset checkpoints: %w", err)
	}
	log.Infof("reset: deleted %d checkpoints from %s", n, cfg.ParsedDir())

	if scope == ResetAll {
		n, err := transcript.NewStore(cfg.TranscriptsDir()).Reset()
		if err != nil {
			return fmt.Errorf("reset transcripts: %w", err)
		}
		log.Infof("reset: deleted %d transcript files from %s", n, cfg.TranscriptsDir())

		n, err = clearDir(cfg.AudioDir())
		if err != nil {
			return fmt.Errorf("reset audio: %w", err)
		}
		log.Infof("reset: deleted %d audio files from %s", n, cfg.AudioDir())

		if err := os.Remove(cfg.EpisodeListPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove episode list: %w", err)
		} else if err == nil {
			log.Info("reset: deleted episode list cache")
		}
	}
	return nil
}

func clearDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	return len(entries), nil
}
