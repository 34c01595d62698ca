package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultFile is the status ledger file name inside the data directory.
const DefaultFile = "article-status.json"

// Status is the lifecycle state of a generated draft.
type Status string

const (
	StatusDrafted Status = "drafted"
)

// ErrCorruptLedger is returned when the ledger file exists but cannot be
// parsed.
var ErrCorruptLedger = errors.New("corrupt status ledger")

// DraftRecord tracks one generated draft. ID and DraftedAt are assigned once
// and survive regeneration.
type DraftRecord struct {
	ID           uuid.UUID
	Slug         string
	Status       Status
	SourceFile   string
	ArticleIndex int
	ContentPath  string
	DraftedAt    time.Time

	// Extra holds fields written by other tools. They are saved back as read.
	Extra map[string]json.RawMessage
}

// recordJSON is the on-disk shape of the known DraftRecord fields.
type recordJSON struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	Slug         string     `json:"slug"`
	Status       Status     `json:"status"`
	SourceFile   string     `json:"sourceFile"`
	ArticleIndex int        `json:"articleIndex"`
	ContentPath  string     `json:"contentPath"`
	DraftedAt    *time.Time `json:"draftedAt,omitempty"`
}

var recordKeys = []string{
	"id", "slug", "status", "sourceFile", "articleIndex", "contentPath", "draftedAt",
}

// MarshalJSON writes the known fields over Extra. A nil ID or zero DraftedAt
// is left out.
func (r DraftRecord) MarshalJSON() ([]byte, error) {
	known := recordJSON{
		Slug:         r.Slug,
		Status:       r.Status,
		SourceFile:   r.SourceFile,
		ArticleIndex: r.ArticleIndex,
		ContentPath:  r.ContentPath,
	}
	if r.ID != uuid.Nil {
		known.ID = &r.ID
	}
	if !r.DraftedAt.IsZero() {
		known.DraftedAt = &r.DraftedAt
	}

	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return data, nil
	}

	fields := make(map[string]json.RawMessage, len(r.Extra)+len(recordKeys))
	for k, v := range r.Extra {
		fields[k] = v
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the known fields and keeps every other key in Extra.
func (r *DraftRecord) UnmarshalJSON(data []byte) error {
	var known recordJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, k := range recordKeys {
		delete(fields, k)
	}

	*r = DraftRecord{
		Slug:         known.Slug,
		Status:       known.Status,
		SourceFile:   known.SourceFile,
		ArticleIndex: known.ArticleIndex,
		ContentPath:  known.ContentPath,
	}
	if known.ID != nil {
		r.ID = *known.ID
	}
	if known.DraftedAt != nil {
		r.DraftedAt = *known.DraftedAt
	}
	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

// Ledger maps a date key to the drafts generated for that date. Slugs are
// unique across the whole ledger, not only within one date.
type Ledger map[string][]DraftRecord

// Slugs returns every slug recorded under any date.
func (l Ledger) Slugs() map[string]struct{} {
	used := make(map[string]struct{})
	for _, records := range l {
		for _, r := range records {
			used[r.Slug] = struct{}{}
		}
	}
	return used
}

// Dates returns the ledger's date keys in ascending order.
func (l Ledger) Dates() []string {
	dates := make([]string, 0, len(l))
	for d := range l {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Find returns the record with slug under dateKey.
func (l Ledger) Find(dateKey, slug string) (DraftRecord, bool) {
	for _, r := range l[dateKey] {
		if r.Slug == slug {
			return r, true
		}
	}
	return DraftRecord{}, false
}

// Upsert records a draft under dateKey. An existing record with the same slug
// only has its source file, article index and content path refreshed; a new
// record gets a fresh ID, the drafted status and draftedAt.
func (l Ledger) Upsert(dateKey string, rec DraftRecord, draftedAt time.Time) DraftRecord {
	records := l[dateKey]
	for i := range records {
		if records[i].Slug != rec.Slug {
			continue
		}
		records[i].SourceFile = rec.SourceFile
		records[i].ArticleIndex = rec.ArticleIndex
		records[i].ContentPath = rec.ContentPath
		if records[i].DraftedAt.IsZero() {
			records[i].DraftedAt = draftedAt
		}
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
		return records[i]
	}

	rec.ID = uuid.New()
	rec.Status = StatusDrafted
	rec.DraftedAt = draftedAt
	l[dateKey] = append(records, rec)
	return rec
}

// Store loads and saves a Ledger as a whole.
type Store interface {
	Load() (Ledger, error)
	Save(Ledger) error
}

// FileStore keeps the ledger in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a ledger store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the ledger. A missing file yields an empty ledger.
func (s *FileStore) Load() (Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to read status ledger: %w", err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, s.path, err)
	}
	if l == nil {
		l = Ledger{}
	}

	return l, nil
}

// Save writes the ledger, replacing the previous file.
func (s *FileStore) Save(l Ledger) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status ledger: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write status ledger: %w", err)
	}

	return nil
}
