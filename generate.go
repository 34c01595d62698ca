package newsdraft

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/newsdraft/config"
	"github.com/pevans/newsdraft/draft"
	"github.com/pevans/newsdraft/ledger"
	"github.com/pevans/newsdraft/slug"
	"github.com/pevans/newsdraft/snapshot"
)

// GenerateRun turns a saved snapshot into markdown drafts and records them in
// the status ledger.
type GenerateRun struct {
	Assigner    *slug.Assigner
	Renderer    *draft.Renderer
	Ledger      ledger.Store
	ArticlesDir string

	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
	// Now stamps new ledger records. Defaults to time.Now.
	Now func() time.Time
}

// GenerateResult summarizes a completed generate run.
type GenerateResult struct {
	DateKey string
	Records []ledger.DraftRecord
}

// NewGenerateRun wires a GenerateRun from configuration.
func NewGenerateRun(cfg *config.Config) (*GenerateRun, error) {
	overrides, err := slug.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}

	return &GenerateRun{
		Assigner:    slug.NewAssigner(overrides),
		Renderer:    draft.NewRenderer(cfg.AuthorLabel),
		Ledger:      ledger.NewFileStore(cfg.StatusPath()),
		ArticlesDir: cfg.ArticlesDir,
		Out:         os.Stdout,
		Now:         time.Now,
	}, nil
}

// Run drafts every article of the snapshot at path. The date key is the file
// name without its extension, so latest.json is keyed as "latest".
func (g *GenerateRun) Run(path string) (GenerateResult, error) {
	snap, err := snapshot.LoadFile(path)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	dateKey := DateKeyFor(path)
	pubDate := snap.PubDate()
	if pubDate == "" {
		pubDate = dateKey
	}

	dir := filepath.Join(g.ArticlesDir, dateKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return GenerateResult{}, fmt.Errorf("failed to create articles directory: %w", err)
	}

	l, err := g.Ledger.Load()
	if err != nil {
		return GenerateResult{}, err
	}

	assignments, err := g.Assigner.Assign(l, dateKey, snap.Articles)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to assign slugs: %w", err)
	}

	draftedAt := g.now().UTC()
	result := GenerateResult{DateKey: dateKey}

	for _, as := range assignments {
		doc := g.Renderer.Render(as.Article, pubDate)
		if err := draft.Check([]byte(doc)); err != nil {
			log.Printf("WARN: Draft %s failed the outline check: %v", as.Slug, err)
		}

		outputPath := filepath.Join(dir, as.Slug+".md")
		if err := os.WriteFile(outputPath, []byte(doc), 0o644); err != nil {
			return result, fmt.Errorf("failed to write draft: %w", err)
		}

		rec := l.Upsert(dateKey, ledger.DraftRecord{
			Slug:         as.Slug,
			SourceFile:   path,
			ArticleIndex: as.Index,
			ContentPath:  outputPath,
		}, draftedAt)
		result.Records = append(result.Records, rec)

		g.printf("✓ %s\n", outputPath)
	}

	if err := g.Ledger.Save(l); err != nil {
		return result, err
	}

	g.printf("Generated %d articles for %s\n", len(assignments), dateKey)
	return result, nil
}

// DateKeyFor derives the date key of a snapshot file from its name.
func DateKeyFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (g *GenerateRun) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *GenerateRun) printf(format string, args ...any) {
	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}
