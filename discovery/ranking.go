package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/scraper"
)

// DefaultRankingLimit is how many ranked entries are taken from one page.
const DefaultRankingLimit = 30

// RankingFetcher returns ranked article stubs (title and URL only). An empty
// date means the current ranking; otherwise date is YYYY-MM-DD.
type RankingFetcher interface {
	FetchRanking(ctx context.Context, date string) ([]article.Article, error)
}

// HTMLRanking scrapes a ranking index page.
type HTMLRanking struct {
	fetcher *Fetcher
	config  scraper.RankingConfig
	baseURL string
	limit   int
}

// NewHTMLRanking creates a ranking fetcher for the site at baseURL. A
// non-positive limit uses DefaultRankingLimit.
func NewHTMLRanking(f *Fetcher, config scraper.RankingConfig, baseURL string, limit int) *HTMLRanking {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	return &HTMLRanking{fetcher: f, config: config, baseURL: baseURL, limit: limit}
}

// FetchRanking fetches and parses the ranking page for date.
func (r *HTMLRanking) FetchRanking(ctx context.Context, date string) ([]article.Article, error) {
	pageURL, err := r.config.RankingURL(r.baseURL, date)
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking URL: %w", err)
	}

	doc, err := r.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return ExtractRanking(doc, r.config, r.baseURL, r.limit)
}

// ExtractRanking collects (title, URL) stubs from the first limit ranking
// items. Items missing either a title or a link are skipped but still count
// toward the limit. Relative links are resolved against baseURL.
func ExtractRanking(doc *goquery.Document, config scraper.RankingConfig, baseURL string, limit int) ([]article.Article, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	articles := []article.Article{}
	doc.Find(config.ItemSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		link := s.Find(config.LinkSelector)
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}

		articles = append(articles, article.Article{
			Title: title,
			URL:   resolve(base, href),
		})
		return true
	})

	return articles, nil
}

func resolve(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(base.String(), "/") + href
	}
	return base.ResolveReference(ref).String()
}

// FeedRanking reads ranking candidates from an RSS or Atom feed, in feed
// order. Feeds carry no per-date history, so the date argument is ignored.
type FeedRanking struct {
	fetcher *Fetcher
	feedURL string
	limit   int
}

// NewFeedRanking creates a feed-backed ranking fetcher.
func NewFeedRanking(f *Fetcher, feedURL string, limit int) *FeedRanking {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	return &FeedRanking{fetcher: f, feedURL: feedURL, limit: limit}
}

// FetchRanking fetches the feed and converts its first items to stubs.
func (r *FeedRanking) FetchRanking(ctx context.Context, _ string) ([]article.Article, error) {
	body, err := r.fetcher.Get(ctx, r.feedURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, &FetchError{URL: r.feedURL, Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	return FeedToArticles(feed, r.limit), nil
}

// FeedToArticles converts feed items to article stubs, skipping items without
// a title or link.
func FeedToArticles(feed *gofeed.Feed, limit int) []article.Article {
	articles := []article.Article{}
	for i, item := range feed.Items {
		if i >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		articles = append(articles, article.Article{Title: title, URL: link})
	}
	return articles
}
