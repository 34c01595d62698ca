package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/newsdraft/ledger"
)

// ErrInvalid matches every ValidationError.
var ErrInvalid = errors.New("invalid config")

// Ranking source kinds.
const (
	SourceHTML = "html"
	SourceFeed = "feed"
)

// Config holds everything the fetch and generate runs need.
type Config struct {
	DataDir       string        `yaml:"data_dir"`
	ArticlesDir   string        `yaml:"articles_dir"`
	OverridesFile string        `yaml:"overrides_file"`
	AuthorLabel   string        `yaml:"author_label"`
	HTTP          HTTPConfig    `yaml:"http"`
	Ranking       RankingConfig `yaml:"ranking"`
}

// HTTPConfig controls how pages are requested.
type HTTPConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout"`
	Delay         time.Duration `yaml:"delay"`
	RespectRobots bool          `yaml:"respect_robots"`
}

// RankingConfig selects where ranking candidates come from.
type RankingConfig struct {
	Source  string `yaml:"source"`
	BaseURL string `yaml:"base_url"`
	FeedURL string `yaml:"feed_url"`
	Limit   int    `yaml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:     "data",
		ArticlesDir: "articles",
		AuthorLabel: "Nikkei Scraper",
		HTTP: HTTPConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timeout:   30 * time.Second,
			Delay:     1500 * time.Millisecond,
		},
		Ranking: RankingConfig{
			Source:  SourceHTML,
			BaseURL: "https://www.nikkei.com",
			Limit:   30,
		},
	}
}

// StatusPath returns the status ledger path inside the data directory.
func (c *Config) StatusPath() string {
	return filepath.Join(c.DataDir, ledger.DefaultFile)
}

// ApplyEnv overrides fields from NEWSDRAFT_* environment variables. lookup is
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("NEWSDRAFT_DATA_DIR"); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup("NEWSDRAFT_ARTICLES_DIR"); ok && v != "" {
		c.ArticlesDir = v
	}
	if v, ok := lookup("NEWSDRAFT_USER_AGENT"); ok && v != "" {
		c.HTTP.UserAgent = v
	}
	if v, ok := lookup("NEWSDRAFT_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NEWSDRAFT_DELAY: %w", err)
		}
		c.HTTP.Delay = d
	}
	return nil
}

// FieldError is a single invalid setting.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError lists every invalid setting found by Validate.
type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, item := range e.Items {
		b.WriteString("\n - ")
		b.WriteString(item.Error())
	}
	return b.String()
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e *ValidationError) add(field, msg string) {
	e.Items = append(e.Items, FieldError{Field: field, Message: msg})
}

// Validate checks the configuration for values the runs cannot work with.
func (c *Config) Validate() error {
	var ve ValidationError

	if strings.TrimSpace(c.DataDir) == "" {
		ve.add("data_dir", "must not be empty")
	}
	if strings.TrimSpace(c.ArticlesDir) == "" {
		ve.add("articles_dir", "must not be empty")
	}
	if c.HTTP.Delay < 0 {
		ve.add("http.delay", "must not be negative")
	}
	if c.HTTP.Timeout < 0 {
		ve.add("http.timeout", "must not be negative")
	}
	if c.Ranking.Limit <= 0 {
		ve.add("ranking.limit", "must be positive")
	}

	switch c.Ranking.Source {
	case SourceHTML:
		if !isAbsURL(c.Ranking.BaseURL) {
			ve.add("ranking.base_url", "must be an absolute http(s) URL")
		}
	case SourceFeed:
		if !isAbsURL(c.Ranking.FeedURL) {
			ve.add("ranking.feed_url", "must be an absolute http(s) URL when source is feed")
		}
	default:
		ve.add("ranking.source", "must be 'html' or 'feed'")
	}

	if len(ve.Items) > 0 {
		return ve
	}
	return nil
}

func isAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
