// Package slug derives collision-free, human-readable draft file names from
// article titles and date keys.
package slug

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/ledger"
)

const (
	maxBaseLen = 30
	fallback   = "article"
)

// ErrCollisionExhausted is returned when every lettered variant of a
// candidate slug is already taken.
var ErrCollisionExhausted = errors.New("slug collision letters exhausted")

var monthWords = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var dayWords = map[string]string{
	"01": "one", "02": "two", "03": "three", "04": "four", "05": "five",
	"06": "six", "07": "seven", "08": "eight", "09": "nine", "10": "ten",
	"11": "eleven", "12": "twelve", "13": "thirteen", "14": "fourteen",
	"15": "fifteen", "16": "sixteen", "17": "seventeen", "18": "eighteen",
	"19": "nineteen", "20": "twenty", "21": "twentyone", "22": "twentytwo",
	"23": "twentythree", "24": "twentyfour", "25": "twentyfive",
	"26": "twentysix", "27": "twentyseven", "28": "twentyeight",
	"29": "twentynine", "30": "thirty", "31": "thirtyone",
}

// Base sanitizes a title into a slug base: lower-case ASCII letters joined by
// single hyphens, at most 30 bytes. Titles without Latin letters give "".
func Base(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	s := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if len(s) > maxBaseLen {
		s = s[:maxBaseLen]
	}
	return strings.Trim(s, "-")
}

// DateSuffix spells a YYYY-MM-DD key's month and day as words, e.g.
// "january-two". Unknown parts become "month" or "day".
func DateSuffix(dateKey string) string {
	parts := strings.Split(dateKey, "-")

	month := "month"
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n >= 1 && n <= len(monthWords) {
			month = monthWords[n-1]
		}
	}

	day := "day"
	if len(parts) > 2 {
		if w, ok := dayWords[parts[2]]; ok {
			day = w
		}
	}

	return month + "-" + day
}

// Candidate joins a base and suffix into the first slug to try.
func Candidate(base, suffix string) string {
	initial := suffix
	if base != "" {
		initial = base + "-" + suffix
	}
	if initial == "" {
		return fallback
	}
	return initial
}

// Reserve finds the first free slug for candidate in used and adds it. Taken
// candidates are retried with a single trailing letter, a through z.
func Reserve(candidate string, used map[string]struct{}) (string, error) {
	if _, taken := used[candidate]; !taken {
		used[candidate] = struct{}{}
		return candidate, nil
	}

	for c := 'a'; c <= 'z'; c++ {
		next := candidate + "-" + string(c)
		if _, taken := used[next]; !taken {
			used[next] = struct{}{}
			return next, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrCollisionExhausted, candidate)
}

// Assignment pairs an article with the slug minted for it.
type Assignment struct {
	Index   int
	Slug    string
	Article article.Article
}

// Assigner mints slugs for a day's articles against a status ledger.
type Assigner struct {
	Overrides Overrides
}

// NewAssigner creates an assigner using the given override table.
func NewAssigner(overrides Overrides) *Assigner {
	return &Assigner{Overrides: overrides}
}

// Assign returns one unique slug per article, in order. Every slug already in
// l, under any date, is treated as taken, as is every slug handed out earlier
// in the same call. A slug recorded for the same date and article index is
// handed back to that article when it still derives from the same candidate,
// so regenerating a day keeps its file names. l itself is not modified.
func (a *Assigner) Assign(l ledger.Ledger, dateKey string, articles []article.Article) ([]Assignment, error) {
	used := l.Slugs()
	suffix := DateSuffix(dateKey)

	owned := make(map[int]string, len(l[dateKey]))
	for _, r := range l[dateKey] {
		if _, ok := owned[r.ArticleIndex]; !ok {
			owned[r.ArticleIndex] = r.Slug
		}
	}
	claimed := make(map[string]struct{}, len(articles))

	out := make([]Assignment, 0, len(articles))
	for i, art := range articles {
		base, ok := a.Overrides.Lookup(dateKey, i)
		if !ok {
			base = Base(art.Title)
		}
		candidate := Candidate(base, suffix)

		s, ok := owned[i]
		if _, dup := claimed[s]; !ok || dup || !derivesFrom(s, candidate) {
			var err error
			if s, err = Reserve(candidate, used); err != nil {
				return nil, err
			}
		}
		claimed[s] = struct{}{}

		out = append(out, Assignment{Index: i, Slug: s, Article: art})
	}

	return out, nil
}

// derivesFrom reports whether s is candidate or one of its lettered variants.
func derivesFrom(s, candidate string) bool {
	if s == candidate {
		return true
	}
	if len(s) != len(candidate)+2 || !strings.HasPrefix(s, candidate+"-") {
		return false
	}
	c := s[len(s)-1]
	return c >= 'a' && c <= 'z'
}
