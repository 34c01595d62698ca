package article

import (
	"time"
)

// MaxTags is the most hashtag-style tags kept per article.
const MaxTags = 5

// Article is a single ranked news article. Ranking pages supply Title and URL;
// the remaining fields come from the article's own page and may be empty.
type Article struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	PublishDate string   `json:"publishDate,omitempty"`
	Category    string   `json:"category,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// Merge returns a copy of a with every non-empty field of details laid over
// it. Title and URL always come from a.
func (a Article) Merge(details Article) Article {
	out := a
	if details.PublishDate != "" {
		out.PublishDate = details.PublishDate
	}
	if details.Category != "" {
		out.Category = details.Category
	}
	if details.Summary != "" {
		out.Summary = details.Summary
	}
	if len(details.Tags) > 0 {
		tags := details.Tags
		if len(tags) > MaxTags {
			tags = tags[:MaxTags]
		}
		out.Tags = append([]string(nil), tags...)
	}
	if details.Author != "" {
		out.Author = details.Author
	}
	return out
}

// Snapshot is the persisted set of articles known for one calendar date.
// Articles within a snapshot have pairwise-distinct URLs.
type Snapshot struct {
	Timestamp string    `json:"timestamp"`
	Articles  []Article `json:"articles"`
}

// PubDate returns the date portion of the snapshot timestamp.
func (s Snapshot) PubDate() string {
	for i := 0; i < len(s.Timestamp); i++ {
		if s.Timestamp[i] == 'T' {
			return s.Timestamp[:i]
		}
	}
	return s.Timestamp
}

// URLs returns the set of article URLs in the snapshot.
func (s Snapshot) URLs() map[string]struct{} {
	urls := make(map[string]struct{}, len(s.Articles))
	for _, a := range s.Articles {
		urls[a.URL] = struct{}{}
	}
	return urls
}

// JST is the fixed UTC+9 zone that every snapshot timestamp is written in.
var JST = time.FixedZone("JST", 9*60*60)

const (
	// DateKeyLayout is the layout of the per-date file stem.
	DateKeyLayout = "2006-01-02"
	// TimestampLayout renders JST times with a literal +09:00 suffix.
	TimestampLayout = "2006-01-02T15:04:05-07:00"
)

// Timestamp formats t in JST with seconds precision.
func Timestamp(t time.Time) string {
	return t.In(JST).Format(TimestampLayout)
}

// DateKey formats t as the JST calendar date.
func DateKey(t time.Time) string {
	return t.In(JST).Format(DateKeyLayout)
}

// ParseDateKey reports whether s is a well-formed YYYY-MM-DD date.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, s, JST)
}
