// Package transcript reads the inputs the transcriber leaves behind:
// <id>.txt text files and optional <id>_timestamps.json time indexes,
// plus the cached episode list.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/timestamp"
	"github.com/ppiankov/casefile/internal/util"
)

var (
	// ErrNoTranscript means the transcriber has not produced <id>.txt yet
	ErrNoTranscript = errors.New("no transcript")

	// ErrNoEpisodeList means the feed step has not run
	ErrNoEpisodeList = errors.New("no episode list (run fetch first)")
)

// Store reads a transcripts directory
type Store struct {
	dir string
}

// NewStore creates a Store over dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the transcripts directory
func (s *Store) Dir() string {
	return s.dir
}

// TextPath is the transcript file for a session
func (s *Store) TextPath(id string) string {
	return filepath.Join(s.dir, id+".txt")
}

// TimestampsPath is the time index file for a session
func (s *Store) TimestampsPath(id string) string {
	return filepath.Join(s.dir, id+"_timestamps.json")
}

// Has reports whether a transcript exists for id
func (s *Store) Has(id string) bool {
	_, err := os.Stat(s.TextPath(id))
	return err == nil
}

// Session loads the transcript text for an episode. The time index is
// loaded separately so a bad index never blocks extraction.
func (s *Store) Session(ep model.Episode) (*model.Session, error) {
	data, err := os.ReadFile(s.TextPath(ep.ID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNoTranscript, ep.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", ep.ID, err)
	}
	return &model.Session{
		Episode: ep,
		Text:    string(data),
		Status:  model.StatusTranscribed,
	}, nil
}

// Segments loads the time index for id; nil when there is none
func (s *Store) Segments(id string) ([]model.Segment, error) {
	return timestamp.ReadSegments(s.TimestampsPath(id))
}

// Status reports where an episode stands without reading the whole pipeline state
func (s *Store) Status(ep model.Episode, parsed bool) model.SessionStatus {
	if parsed {
		return model.StatusParsed
	}
	sess, err := s.Session(ep)
	if err != nil {
		return model.StatusNotStarted
	}
	if sess.Unavailable() {
		return model.StatusFailed
	}
	return model.StatusTranscribed
}

// Reset removes the transcripts directory and returns how many files it held
func (s *Store) Reset() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list transcripts: %w", err)
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return 0, fmt.Errorf("remove transcripts: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("recreate transcripts dir: %w", err)
	}
	return len(entries), nil
}

// LoadEpisodes reads the cached episode list
func LoadEpisodes(path string) ([]model.Episode, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoEpisodeList
	}
	if err != nil {
		return nil, fmt.Errorf("read episode list: %w", err)
	}
	var episodes []model.Episode
	if err := json.Unmarshal(data, &episodes); err != nil {
		return nil, fmt.Errorf("decode episode list: %w", err)
	}
	return episodes, nil
}

// SaveEpisodes writes the episode list atomically
func SaveEpisodes(path string, episodes []model.Episode) error {
	if episodes == nil {
		episodes = []model.Episode{}
	}
	data, err := json.MarshalIndent(episodes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode episode list: %w", err)
	}
	return util.WriteFileAtomic(path, data, 0o644)
}
