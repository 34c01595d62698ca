package newsdraft

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/config"
	"github.com/pevans/newsdraft/draft"
	"github.com/pevans/newsdraft/ledger"
	"github.com/pevans/newsdraft/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: build a GenerateRun rooted in a temp dir
func newTestGenerateRun(t *testing.T) (*GenerateRun, *config.Config) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.ArticlesDir = filepath.Join(root, "articles")

	run, err := NewGenerateRun(cfg)
	require.NoError(t, err)
	run.Out = &bytes.Buffer{}
	run.Now = func() time.Time { return time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC) }
	return run, cfg
}

// Test helper: write a snapshot file into the data directory
func writeSnapshot(t *testing.T, cfg *config.Config, name string, snap article.Snapshot) string {
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	data, err := json.MarshalIndent(snap, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(cfg.DataDir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sampleSnapshot() article.Snapshot {
	return article.Snapshot{
		Timestamp: "2026-02-10T09:00:00+09:00",
		Articles: []article.Article{
			{
				Title:   "Tokyo stocks rally",
				URL:     "https://www.nikkei.com/article/1",
				Summary: strings.Repeat("株", 200),
				Tags:    []string{"#株式", "#日経平均"},
			},
			{
				Title: "日銀、金利を据え置き",
				URL:   "https://www.nikkei.com/article/2",
			},
		},
	}
}

// TestGenerateRun_WritesDrafts verifies drafts and ledger records are written
func TestGenerateRun_WritesDrafts(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	path := writeSnapshot(t, cfg, "2026-02-10.json", sampleSnapshot())

	result, err := run.Run(path)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-10", result.DateKey)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "tokyo-stocks-rally-february-ten", result.Records[0].Slug)
	assert.Equal(t, "february-ten", result.Records[1].Slug)

	first := filepath.Join(cfg.ArticlesDir, "2026-02-10", "tokyo-stocks-rally-february-ten.md")
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.NoError(t, draft.Check(data))

	fm, _, err := draft.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo stocks rally", fm.Title)
	assert.Equal(t, strings.Repeat("株", 120), fm.Description)
	assert.Equal(t, "2026-02-10", fm.PubDate)
	assert.Equal(t, draft.DefaultAuthor, fm.Author)
	assert.Equal(t, []string{"株式", "日経平均"}, fm.Tags)

	second, err := os.ReadFile(filepath.Join(cfg.ArticlesDir, "2026-02-10", "february-ten.md"))
	require.NoError(t, err)
	fm, _, err = draft.Parse(second)
	require.NoError(t, err)
	assert.Equal(t, "日銀、金利を据え置き", fm.Description)
	assert.Equal(t, []string{draft.DefaultTag}, fm.Tags)

	l, err := ledger.NewFileStore(cfg.StatusPath()).Load()
	require.NoError(t, err)
	require.Len(t, l["2026-02-10"], 2)
	rec := l["2026-02-10"][0]
	assert.Equal(t, ledger.StatusDrafted, rec.Status)
	assert.Equal(t, path, rec.SourceFile)
	assert.Equal(t, 0, rec.ArticleIndex)
	assert.Equal(t, first, rec.ContentPath)
	assert.True(t, rec.DraftedAt.Equal(run.Now()))
}

// TestGenerateRun_RegeneratePreservesRecords verifies re-running keeps slugs,
// IDs and draftedAt
func TestGenerateRun_RegeneratePreservesRecords(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	path := writeSnapshot(t, cfg, "2026-02-10.json", sampleSnapshot())

	firstRun, err := run.Run(path)
	require.NoError(t, err)

	firstTime := run.Now()
	run.Now = func() time.Time { return firstTime.Add(24 * time.Hour) }
	_, err = run.Run(path)
	require.NoError(t, err)

	l, err := ledger.NewFileStore(cfg.StatusPath()).Load()
	require.NoError(t, err)
	records := l["2026-02-10"]
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, firstRun.Records[i].Slug, rec.Slug)
		assert.Equal(t, firstRun.Records[i].ID, rec.ID)
		assert.True(t, rec.DraftedAt.Equal(firstTime), "draftedAt should not change")
	}

	entries, err := os.ReadDir(filepath.Join(cfg.ArticlesDir, "2026-02-10"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestGenerateRun_CollidesWithOtherDates verifies slugs already drafted on
// another date are not reused
func TestGenerateRun_CollidesWithOtherDates(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	store := ledger.NewFileStore(cfg.StatusPath())
	require.NoError(t, store.Save(ledger.Ledger{
		"2025-02-10": {{Slug: "february-ten", Status: ledger.StatusDrafted}},
	}))
	path := writeSnapshot(t, cfg, "2026-02-10.json", sampleSnapshot())

	result, err := run.Run(path)
	require.NoError(t, err)

	assert.Equal(t, "february-ten-a", result.Records[1].Slug)

	l, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, l["2025-02-10"], 1)
	assert.Len(t, l["2026-02-10"], 2)
}

// TestGenerateRun_KeepsOtherDatesIntact verifies records from other dates
// are saved back with all their fields
func TestGenerateRun_KeepsOtherDatesIntact(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	seed := `{"2025-01-01":[{"slug":"x","status":"published","publishedUrl":"https://blog/x"}]}`
	require.NoError(t, os.WriteFile(cfg.StatusPath(), []byte(seed), 0o644))
	path := writeSnapshot(t, cfg, "2026-02-10.json", sampleSnapshot())

	_, err := run.Run(path)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.StatusPath())
	require.NoError(t, err)
	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	require.Len(t, raw["2025-01-01"], 1)
	legacy := raw["2025-01-01"][0]
	assert.Equal(t, "https://blog/x", legacy["publishedUrl"])
	assert.Equal(t, "published", legacy["status"])
	assert.NotContains(t, legacy, "id")
	assert.Len(t, raw["2026-02-10"], 2)
}

// TestGenerateRun_Overrides verifies the built-in override table is applied
func TestGenerateRun_Overrides(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	snap := article.Snapshot{
		Timestamp: "2026-01-02T09:00:00+09:00",
		Articles:  []article.Article{{Title: "アルファ・ティーン", URL: "https://www.nikkei.com/a"}},
	}
	path := writeSnapshot(t, cfg, "2026-01-02.json", snap)

	result, err := run.Run(path)
	require.NoError(t, err)

	assert.Equal(t, "alpha-teen-mastermind-shock-january-two", result.Records[0].Slug)
}

// TestGenerateRun_LatestKeyedByFileName verifies latest.json is not filed
// under the day it was saved on
func TestGenerateRun_LatestKeyedByFileName(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	store, err := snapshot.NewStore(cfg.DataDir)
	require.NoError(t, err)
	store.Now = func() time.Time { return time.Date(2026, 1, 5, 1, 0, 0, 0, time.UTC) }
	_, _, err = store.Save("2026-01-02", []article.Article{{Title: "Foo", URL: "https://www.nikkei.com/foo"}})
	require.NoError(t, err)

	result, err := run.Run(filepath.Join(cfg.DataDir, snapshot.LatestFile))
	require.NoError(t, err)

	assert.Equal(t, "latest", result.DateKey)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "foo-month-day", result.Records[0].Slug)
	assert.NotContains(t, result.Records[0].Slug, "january-five")

	l, err := ledger.NewFileStore(cfg.StatusPath()).Load()
	require.NoError(t, err)
	assert.Empty(t, l["2026-01-05"])
	assert.Len(t, l["latest"], 1)

	_, err = os.Stat(filepath.Join(cfg.ArticlesDir, "2026-01-05"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

// TestGenerateRun_MissingSnapshot verifies a missing file is reported as such
func TestGenerateRun_MissingSnapshot(t *testing.T) {
	run, cfg := newTestGenerateRun(t)

	_, err := run.Run(filepath.Join(cfg.DataDir, "2026-02-10.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

// TestGenerateRun_CorruptSnapshot verifies unparsable snapshots are fatal
func TestGenerateRun_CorruptSnapshot(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	path := filepath.Join(cfg.DataDir, "2026-02-10.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := run.Run(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrCorruptSnapshot))

	_, statErr := os.Stat(cfg.StatusPath())
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

// TestGenerateRun_CorruptLedger verifies an unparsable ledger is fatal
func TestGenerateRun_CorruptLedger(t *testing.T) {
	run, cfg := newTestGenerateRun(t)
	path := writeSnapshot(t, cfg, "2026-02-10.json", sampleSnapshot())
	require.NoError(t, os.WriteFile(cfg.StatusPath(), []byte("[]"), 0o644))

	_, err := run.Run(path)
	assert.True(t, errors.Is(err, ledger.ErrCorruptLedger))
}

// TestDateKeyFor verifies date keys are the file name stem
func TestDateKeyFor(t *testing.T) {
	assert.Equal(t, "2026-01-05", DateKeyFor("data/2026-01-05.json"))
	assert.Equal(t, "latest", DateKeyFor("data/latest.json"))
	assert.Equal(t, "notes", DateKeyFor("notes"))
}
