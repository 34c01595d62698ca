package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pevans/newsdraft/article"
)

// LatestFile is the file name that always mirrors the most recent save.
const LatestFile = "latest.json"

// ErrCorruptSnapshot is returned when an existing snapshot file cannot be
// read or parsed. A missing file is never corrupt.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// CorruptError describes a snapshot file that exists but could not be loaded.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrCorruptSnapshot, e.Err)
}

func (e *CorruptError) Unwrap() []error {
	return []error{ErrCorruptSnapshot, e.Err}
}

// MergeStats counts what a merge did with an incoming batch.
type MergeStats struct {
	Existing int
	Added    int
	Skipped  int
}

// Merge appends every incoming article whose URL is not already known to the
// existing snapshot. Existing records are authoritative: an incoming article
// with a known URL is dropped whole, not merged field by field. A nil
// existing snapshot is treated as empty.
func Merge(existing *article.Snapshot, incoming []article.Article, timestamp string) (article.Snapshot, MergeStats) {
	var current []article.Article
	if existing != nil {
		current = existing.Articles
	}

	seen := make(map[string]struct{}, len(current)+len(incoming))
	merged := make([]article.Article, 0, len(current)+len(incoming))
	for _, a := range current {
		seen[a.URL] = struct{}{}
		merged = append(merged, a)
	}

	stats := MergeStats{Existing: len(current)}
	for _, a := range incoming {
		if _, ok := seen[a.URL]; ok {
			stats.Skipped++
			continue
		}
		seen[a.URL] = struct{}{}
		merged = append(merged, a)
		stats.Added++
	}

	return article.Snapshot{
		Timestamp: timestamp,
		Articles:  merged,
	}, stats
}

// Store keeps one snapshot file per date key in a data directory.
type Store struct {
	dataDir string

	// Now returns the save time. Defaults to time.Now.
	Now func() time.Time
}

// NewStore creates a snapshot store rooted at dataDir, creating the directory
// if needed.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{
		dataDir: dataDir,
		Now:     time.Now,
	}, nil
}

// Path returns the file path for a date key.
func (s *Store) Path(dateKey string) string {
	return filepath.Join(s.dataDir, dateKey+".json")
}

// Load reads the snapshot for a date key. It returns (nil, nil) when no
// snapshot has been written for that date yet.
func (s *Store) Load(dateKey string) (*article.Snapshot, error) {
	snap, err := LoadFile(s.Path(dateKey))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return snap, err
}

// Latest reads the latest pointer file.
func (s *Store) Latest() (*article.Snapshot, error) {
	return LoadFile(filepath.Join(s.dataDir, LatestFile))
}

// Save merges articles into the snapshot for dateKey and writes both the
// per-date file and the latest pointer. The latest pointer is overwritten
// even when dateKey is not today's date.
func (s *Store) Save(dateKey string, articles []article.Article) (article.Snapshot, MergeStats, error) {
	existing, err := s.Load(dateKey)
	if err != nil {
		return article.Snapshot{}, MergeStats{}, err
	}

	snap, stats := Merge(existing, articles, article.Timestamp(s.Now()))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return article.Snapshot{}, stats, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	filename := s.Path(dateKey)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return article.Snapshot{}, stats, fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.Printf("INFO: Saved ranking to %s (%d new articles, %d existing)",
		filepath.Base(filename), stats.Added, stats.Existing)

	latest := filepath.Join(s.dataDir, LatestFile)
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return article.Snapshot{}, stats, fmt.Errorf("failed to write %s: %w", LatestFile, err)
	}
	log.Printf("INFO: Updated %s", LatestFile)

	return snap, stats, nil
}

// LoadFile reads a snapshot from an arbitrary path. Errors satisfy
// errors.Is(err, fs.ErrNotExist) when the file is absent and
// errors.Is(err, ErrCorruptSnapshot) when it exists but cannot be loaded.
func LoadFile(path string) (*article.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &CorruptError{Path: path, Err: err}
	}

	var snap article.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}

	return &snap, nil
}
