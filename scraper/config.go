package scraper

import (
	"net/url"
	"strings"
)

// RankingConfig defines how ranked entries are found on a ranking index page.
type RankingConfig struct {
	// Path is the ranking index path, relative to the site base URL.
	Path string `yaml:"path"`
	// Query holds the fixed query parameters of the index.
	Query map[string]string `yaml:"query"`
	// DateParam is the query parameter carrying a YYYYMMDD date.
	DateParam string `yaml:"date_param"`

	ItemSelector string `yaml:"item_selector"`
	LinkSelector string `yaml:"link_selector"`
}

// ArticleConfig defines how detail fields are extracted from an article page.
type ArticleConfig struct {
	DateSelector     string `yaml:"date_selector"`
	CategorySelector string `yaml:"category_selector"`
	// DescriptionSelector is tried first for the summary; its content
	// attribute is used.
	DescriptionSelector string `yaml:"description_selector"`
	BodySelector        string `yaml:"body_selector"`
	TagSelector         string `yaml:"tag_selector"`
	AuthorSelector      string `yaml:"author_selector"`
}

// Layout bundles the selectors for one site.
type Layout struct {
	Ranking RankingConfig `yaml:"ranking"`
	Article ArticleConfig `yaml:"article"`
}

// NikkeiLayout returns the selectors for nikkei.com's access ranking.
func NikkeiLayout() Layout {
	return Layout{
		Ranking: RankingConfig{
			Path:         "/access/index/",
			Query:        map[string]string{"bd": "hKijiSougou"},
			DateParam:    "bc",
			ItemSelector: ".m-miM32_item",
			LinkSelector: ".m-miM32_itemTitleText a",
		},
		Article: ArticleConfig{
			DateSelector:        "time",
			CategorySelector:    ".theme-title",
			DescriptionSelector: `meta[name="description"]`,
			BodySelector:        ".cmn-article_text",
			TagSelector:         `a[href*="/theme/"]`,
			AuthorSelector:      ".cmnc-byline",
		},
	}
}

// RankingURL builds the ranking index URL under base. An empty date selects
// the current ranking; otherwise date is YYYY-MM-DD and sent as YYYYMMDD.
func (c RankingConfig) RankingURL(base, date string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + c.Path)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for k, v := range c.Query {
		q.Set(k, v)
	}
	if date != "" && c.DateParam != "" {
		q.Set(c.DateParam, strings.ReplaceAll(date, "-", ""))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
