package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
)

var (
	// ErrFetchFailed matches every FetchError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrDisallowed is returned when robots.txt forbids a page.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// FetchError describes a page that could not be fetched or parsed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// Fetcher performs the GET requests for ranking, feed and article pages.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	robots        map[string]*robotstxt.RobotsData
}

// NewFetcher creates a fetcher with its own HTTP client.
func NewFetcher(opts FetcherOptions) *Fetcher {
	return &Fetcher{
		client:        &http.Client{Timeout: opts.Timeout},
		userAgent:     opts.UserAgent,
		respectRobots: opts.RespectRobots,
		robots:        make(map[string]*robotstxt.RobotsData),
	}
}

// Get requests pageURL and returns the response body decoded to UTF-8. The
// caller must close the returned reader.
func (f *Fetcher) Get(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	if !f.allowed(ctx, u) {
		return nil, &FetchError{URL: pageURL, Err: ErrDisallowed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP error: %s", resp.Status),
		}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		body = resp.Body
	}

	return struct {
		io.Reader
		io.Closer
	}{body, resp.Body}, nil
}

// FetchHTML fetches pageURL and parses it with goquery.
func (f *Fetcher) FetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	return doc, nil
}

// allowed consults the host's robots.txt when robots checks are enabled. A
// robots.txt that cannot be fetched allows everything.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	if !f.respectRobots {
		return true
	}

	data, ok := f.robots[u.Host]
	if !ok {
		data = f.fetchRobots(ctx, u)
		f.robots[u.Host] = data
	}
	if data == nil {
		return true
	}

	return data.TestAgent(u.RequestURI(), f.userAgent)
}

func (f *Fetcher) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("WARN: Failed to fetch %s: %v", robotsURL, err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.Printf("WARN: Failed to parse %s: %v", robotsURL, err)
		return nil
	}

	return data
}
