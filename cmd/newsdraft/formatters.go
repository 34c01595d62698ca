package main

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/pevans/newsdraft/ledger"
)

var (
	dateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// printStatusTable prints ledger records grouped by date
func printStatusTable(w io.Writer, l ledger.Ledger) {
	total := 0
	for _, date := range l.Dates() {
		total += len(l[date])
	}
	if total == 0 {
		fmt.Fprintln(w, "No drafts recorded.")
		return
	}

	for _, date := range l.Dates() {
		records := l[date]
		if len(records) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s %s\n", dateStyle.Render(date),
			mutedStyle.Render(fmt.Sprintf("(%d drafts)", len(records))))

		for _, rec := range records {
			fmt.Fprintf(w, "  %3d  %-48s %-8s %s\n",
				rec.ArticleIndex,
				truncate(rec.Slug, 48),
				rec.Status,
				rec.DraftedAt.Format("2006-01-02 15:04"),
			)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d drafts total", total)))
}

// printStatusJSON prints the ledger in its on-disk JSON shape
func printStatusJSON(w io.Writer, l ledger.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// truncate shortens s to limit characters, marking the cut with "..."
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-3]) + "..."
}
