// Package checkpoint persists per-session extraction results. A session
// file exists only once every chunk of that session has been processed,
// and files are replaced atomically.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

const (
	recordsExt = ".json"
	regionsExt = ".regions"
)

// Store is a directory of <id>.json checkpoint files with an in-memory
// layer in front of reads. Cached values are raw bytes, so each Load hands
// out fresh records.
type Store struct {
	dir string
	mem *gocache.Cache
}

// New opens (and creates) a checkpoint directory
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &Store{
		dir: dir,
		mem: gocache.New(30*time.Minute, 10*time.Minute),
	}, nil
}

// Dir returns the checkpoint directory
func (s *Store) Dir() string {
	return s.dir
}

// Path is the checkpoint file for a session
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+recordsExt)
}

func (s *Store) regionsPath(id string) string {
	return filepath.Join(s.dir, id+regionsExt)
}

// Has reports whether a session is already checkpointed
func (s *Store) Has(id string) bool {
	if _, ok := s.mem.Get(id); ok {
		return true
	}
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Load returns the records of a checkpointed session
func (s *Store) Load(id string) ([]model.Record, error) {
	data, err := s.read(id)
	if err != nil {
		return nil, err
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", id, err)
	}
	return records, nil
}

func (s *Store) read(id string) ([]byte, error) {
	if v, ok := s.mem.Get(id); ok {
		return v.([]byte), nil
	}
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", id, err)
	}
	s.mem.Set(id, data, gocache.DefaultExpiration)
	return data, nil
}

// Save writes a session's records atomically
func (s *Store) Save(id string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", id, err)
	}
	if err := util.WriteFileAtomic(s.Path(id), data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", id, err)
	}
	s.mem.Set(id, data, gocache.DefaultExpiration)
	return nil
}

// RegionsDone reports whether the region repair already ran for a session
func (s *Store) RegionsDone(id string) bool {
	_, err := os.Stat(s.regionsPath(id))
	return err == nil
}

// MarkRegions records that the region repair finished for a session
func (s *Store) MarkRegions(id string) error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339) + "\n")
	if err := util.WriteFileAtomic(s.regionsPath(id), stamp, 0o644); err != nil {
		return fmt.Errorf("write region marker %s: %w", id, err)
	}
	return nil
}

// IDs lists checkpointed session ids in sorted order
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordsExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordsExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Reset deletes every checkpoint and region marker and returns how many
// session files were removed.
func (s *Store) Reset() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list checkpoints: %w", err)
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		isRecords := strings.HasSuffix(name, recordsExt)
		if !isRecords && !strings.HasSuffix(name, regionsExt) && !strings.HasSuffix(name, ".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		if isRecords {
			removed++
		}
	}
	s.mem.Flush()
	return removed, nil
}
