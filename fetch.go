package newsdraft

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/config"
	"github.com/pevans/newsdraft/discovery"
	"github.com/pevans/newsdraft/scraper"
	"github.com/pevans/newsdraft/snapshot"
)

// DetailSource fetches the optional fields of a single article page.
type DetailSource interface {
	FetchDetail(ctx context.Context, url string) discovery.DetailResult
}

// FetchRun scrapes one ranking, enriches every entry with its detail page and
// merges the result into the day's snapshot.
type FetchRun struct {
	Ranking discovery.RankingFetcher
	Details DetailSource
	Store   *snapshot.Store

	// Delay is the pause between detail requests.
	Delay time.Duration
	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
	// Now picks the date key when none is given. Defaults to time.Now.
	Now func() time.Time
}

// FetchResult summarizes a completed fetch run.
type FetchResult struct {
	DateKey  string
	Found    int
	Failed   int
	Stats    snapshot.MergeStats
	Snapshot article.Snapshot
}

// NewFetchRun wires a FetchRun from configuration.
func NewFetchRun(cfg *config.Config) (*FetchRun, error) {
	store, err := snapshot.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	fetcher := discovery.NewFetcher(discovery.FetcherOptions{
		UserAgent:     cfg.HTTP.UserAgent,
		Timeout:       cfg.HTTP.Timeout,
		RespectRobots: cfg.HTTP.RespectRobots,
	})
	layout := scraper.NikkeiLayout()

	var ranking discovery.RankingFetcher
	switch cfg.Ranking.Source {
	case config.SourceFeed:
		ranking = discovery.NewFeedRanking(fetcher, cfg.Ranking.FeedURL, cfg.Ranking.Limit)
	default:
		ranking = discovery.NewHTMLRanking(fetcher, layout.Ranking, cfg.Ranking.BaseURL, cfg.Ranking.Limit)
	}

	return &FetchRun{
		Ranking: ranking,
		Details: discovery.NewDetailFetcher(fetcher, layout.Article),
		Store:   store,
		Delay:   cfg.HTTP.Delay,
		Out:     os.Stdout,
		Now:     time.Now,
	}, nil
}

// Run fetches the ranking for date (YYYY-MM-DD, or empty for today in JST)
// and saves it. A ranking failure aborts the run; detail failures only leave
// the affected entries without detail fields.
func (r *FetchRun) Run(ctx context.Context, date string) (FetchResult, error) {
	dateKey := date
	if dateKey == "" {
		dateKey = article.DateKey(r.now())
	} else if _, err := article.ParseDateKey(dateKey); err != nil {
		return FetchResult{}, err
	}

	if date == "" {
		r.printf("Fetching Nikkei ranking for today (%s)...\n", dateKey)
	} else {
		r.printf("Fetching Nikkei ranking for %s...\n", dateKey)
	}
	stubs, err := r.Ranking.FetchRanking(ctx, date)
	if err != nil {
		return FetchResult{}, fmt.Errorf("failed to fetch ranking: %w", err)
	}
	r.printf("Found %d articles\n", len(stubs))

	result := FetchResult{DateKey: dateKey, Found: len(stubs)}

	if len(stubs) > 0 {
		r.printf("\nFetching article details...\n")
	}
	articles := make([]article.Article, 0, len(stubs))
	for i, stub := range stubs {
		r.printf("[%d/%d] %s\n", i+1, len(stubs), stub.Title)

		res := r.Details.FetchDetail(ctx, stub.URL)
		if !res.OK() {
			result.Failed++
		}
		articles = append(articles, stub.Merge(res.Article))

		if i < len(stubs)-1 {
			if err := wait(ctx, r.Delay); err != nil {
				return result, err
			}
		}
	}

	r.printf("\nSaving ranking data...\n")
	snap, stats, err := r.Store.Save(dateKey, articles)
	if err != nil {
		return result, fmt.Errorf("failed to save ranking: %w", err)
	}
	r.printf("Successfully saved ranking data\n")

	result.Stats = stats
	result.Snapshot = snap
	return result, nil
}

func (r *FetchRun) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *FetchRun) printf(format string, args ...any) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// wait pauses for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
