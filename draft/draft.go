package draft

import (
	"strings"
	"unicode/utf8"

	"github.com/pevans/newsdraft/article"
)

const (
	// DefaultAuthor is the author label written into every front matter.
	DefaultAuthor = "Nikkei Scraper"
	// DefaultTag is used when an article carries no tags.
	DefaultTag = "ニュース分析"

	descriptionLimit = 120

	summaryPlaceholder = "最新の報道内容を踏まえて分析します。"
	datePlaceholder    = "記載日時不明"
)

// Sections are the level-two headings of every generated body, in order.
var Sections = []string{
	"はじめに",
	"背景と主要論点",
	"実務者向けチェックリスト",
	"注意点・リスク",
	"まとめ",
}

// Renderer turns articles into markdown drafts.
type Renderer struct {
	Author string
}

// NewRenderer creates a renderer with the given author label. An empty label
// falls back to DefaultAuthor.
func NewRenderer(author string) *Renderer {
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}
	return &Renderer{Author: author}
}

// Render returns the full markdown document for a, front matter included.
// pubDate is written verbatim as the front matter pubDate.
func (r *Renderer) Render(a article.Article, pubDate string) string {
	var b strings.Builder
	b.WriteString(r.FrontMatter(a, pubDate))
	b.WriteString(Body(a))
	b.WriteString("\n")
	return b.String()
}

// FrontMatter renders the YAML block, delimiters and trailing blank line
// included.
func (r *Renderer) FrontMatter(a article.Article, pubDate string) string {
	source := a.Summary
	if strings.TrimSpace(source) == "" {
		source = a.Title
	}

	tags := Tags(a.Tags)
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = quote(t)
	}

	return strings.Join([]string{
		"---",
		"title: " + quote(a.Title),
		"description: " + quote(Description(source)),
		"pubDate: " + pubDate,
		"author: " + quote(r.Author),
		"tags: [" + strings.Join(quoted, ", ") + "]",
		"---",
		"",
	}, "\n")
}

// Description collapses whitespace and keeps at most 120 characters.
func Description(text string) string {
	return truncate(collapse(text), descriptionLimit)
}

// Tags strips leading hash marks and replaces path separators. An empty list
// becomes the single default tag.
func Tags(tags []string) []string {
	if len(tags) == 0 {
		return []string{DefaultTag}
	}

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.HasPrefix(t, "#") {
			t = strings.TrimPrefix(t, "#")
		} else {
			t = strings.TrimPrefix(t, "＃")
		}
		t = strings.NewReplacer("/", "-", `\`, "-").Replace(t)
		out = append(out, t)
	}
	return out
}

// Body renders the fixed five-section template for a.
func Body(a article.Article) string {
	summary := collapse(a.Summary)
	if summary == "" {
		summary = summaryPlaceholder
	}
	published := a.PublishDate
	if published == "" {
		published = datePlaceholder
	}

	return strings.Join([]string{
		"## " + Sections[0],
		a.Title + "に関する報道では、" + summary,
		"",
		"## " + Sections[1],
		a.Title + " は " + published + " に伝えられ、政策・企業活動・国際関係に多角的な影響を及ぼす可能性があります。この記事では背景、実務への示唆、注意点を整理します。",
		"",
		"## " + Sections[2],
		"1. 週次で公式発表や一次情報を確認し、前提となる数値やタイムラインを更新する。",
		"2. サプライチェーンや投資計画、リスク管理フレームワークに与える影響を洗い出し、代替策を準備する。",
		"3. 社内外ステークホルダーへの説明資料を整備し、議論の土台となる共通認識を醸成する。",
		"",
		"## " + Sections[3],
		"- " + a.Title + " に関する情報は出所によってバイアスがかかる可能性があるため、複数ソースで検証する。",
		"- 政策や国際情勢が急速に変化すると前提が崩れる恐れがあるため、シナリオプランニングを怠らない。",
		"",
		"## " + Sections[4],
		a.Title + " は長期的なマクロ環境や企業戦略と密接に結び付いています。日々のアップデートを追いながら、再現性のある意思決定プロセスを構築しましょう。",
	}, "\n")
}

// quote wraps s in single quotes, doubling any embedded single quote.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
