package discovery

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/scraper"
)

const (
	summaryLimit   = 200
	minBodyExcerpt = 20
)

// remainingRe matches the paywall "残りN文字" counter and whatever follows it
// on the same line.
var remainingRe = regexp.MustCompile(`残り\d+文字.*$`)

// DetailResult is the outcome of a detail fetch. Err is set when the page
// could not be fetched; Article is then empty. A nil Err with an empty
// Article means the page was fetched but carried none of the fields.
type DetailResult struct {
	Article article.Article
	Err     error
}

// OK reports whether the page was fetched.
func (r DetailResult) OK() bool {
	return r.Err == nil
}

// DetailFetcher extracts detail fields from article pages.
type DetailFetcher struct {
	fetcher *Fetcher
	config  scraper.ArticleConfig
}

// NewDetailFetcher creates a detail fetcher using the given selectors.
func NewDetailFetcher(f *Fetcher, config scraper.ArticleConfig) *DetailFetcher {
	return &DetailFetcher{fetcher: f, config: config}
}

// FetchDetail fetches pageURL and extracts what it can. Failures are logged
// and reported in the result, never returned as an error.
func (d *DetailFetcher) FetchDetail(ctx context.Context, pageURL string) DetailResult {
	doc, err := d.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		log.Printf("ERROR: Error fetching article detail from %s: %v", pageURL, err)
		return DetailResult{Err: err}
	}

	return DetailResult{Article: ExtractDetail(doc, d.config, pageURL)}
}

// ExtractDetail pulls the optional article fields out of a parsed page.
// Title and URL are left empty; they come from the ranking entry.
func ExtractDetail(doc *goquery.Document, config scraper.ArticleConfig, pageURL string) article.Article {
	var details article.Article

	if config.DateSelector != "" {
		if sel := doc.Find(config.DateSelector).First(); sel.Length() > 0 {
			details.PublishDate = strings.TrimSpace(sel.Text())
		}
	}

	if config.CategorySelector != "" {
		if sel := doc.Find(config.CategorySelector).First(); sel.Length() > 0 {
			details.Category = strings.TrimSpace(sel.Text())
		}
	}

	details.Summary = extractSummary(doc, config, pageURL)

	if config.TagSelector != "" {
		var tags []string
		doc.Find(config.TagSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			tag := strings.TrimSpace(s.Text())
			if strings.HasPrefix(tag, "#") && !contains(tags, tag) {
				tags = append(tags, tag)
			}
			return len(tags) < article.MaxTags
		})
		details.Tags = tags
	}

	if config.AuthorSelector != "" {
		if sel := doc.Find(config.AuthorSelector); sel.Length() > 0 {
			details.Author = strings.TrimSpace(sel.Text())
		}
	}

	return details
}

// extractSummary prefers the meta description, then an excerpt of the
// article body, then a readability excerpt of the whole page.
func extractSummary(doc *goquery.Document, config scraper.ArticleConfig, pageURL string) string {
	if config.DescriptionSelector != "" {
		if content, ok := doc.Find(config.DescriptionSelector).First().Attr("content"); ok && content != "" {
			return strings.TrimSpace(content)
		}
	}

	if config.BodySelector != "" {
		text := strings.TrimSpace(doc.Find(config.BodySelector).First().Text())
		if utf8.RuneCountInString(text) > minBodyExcerpt {
			text = strings.TrimSpace(remainingRe.ReplaceAllString(text, ""))
			return truncate(text, summaryLimit)
		}
	}

	return readabilityExcerpt(doc, pageURL)
}

func readabilityExcerpt(doc *goquery.Document, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	parsed, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return ""
	}

	excerpt := strings.Join(strings.Fields(parsed.Excerpt), " ")
	return truncate(excerpt, summaryLimit)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func contains(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}
