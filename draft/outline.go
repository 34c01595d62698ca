package draft

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var (
	errNoFrontMatter      = errors.New("no front matter found")
	errInvalidFrontMatter = errors.New("invalid front matter")

	// ErrMalformedDraft is returned by Check when a rendered draft does not
	// have the expected front matter and section outline.
	ErrMalformedDraft = errors.New("malformed draft")
)

// FrontMatter is the decoded header of a generated draft.
type FrontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PubDate     string   `yaml:"pubDate"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
}

// Split separates a draft into its front matter YAML and markdown body.
func Split(doc []byte) ([]byte, []byte, error) {
	norm := bytes.ReplaceAll(doc, []byte("\r\n"), []byte("\n"))

	const sep = "---\n"
	if !bytes.HasPrefix(norm, []byte(sep)) {
		return nil, norm, errNoFrontMatter
	}

	parts := bytes.SplitN(norm[len(sep):], []byte("\n"+sep), 2)
	if len(parts) != 2 {
		return nil, norm, errInvalidFrontMatter
	}

	return parts[0], parts[1], nil
}

// Parse decodes a draft's front matter and returns it with the body.
func Parse(doc []byte) (FrontMatter, []byte, error) {
	head, body, err := Split(doc)
	if err != nil {
		return FrontMatter{}, body, err
	}

	var fm FrontMatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return FrontMatter{}, body, fmt.Errorf("%w: %v", errInvalidFrontMatter, err)
	}

	return fm, body, nil
}

// Outline returns the text of every level-two heading in a markdown body.
func Outline(body []byte) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var heads []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if seg, ok := c.(*ast.Text); ok {
				buf.Write(seg.Segment.Value(body))
			}
		}
		heads = append(heads, buf.String())
		return ast.WalkSkipChildren, nil
	})

	return heads
}

// Check verifies that a rendered draft has parseable front matter with a
// title and exactly the template's sections.
func Check(doc []byte) error {
	fm, body, err := Parse(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if fm.Title == "" {
		return fmt.Errorf("%w: empty title", ErrMalformedDraft)
	}
	if got := Outline(body); !slices.Equal(got, Sections) {
		return fmt.Errorf("%w: sections %q", ErrMalformedDraft, got)
	}
	return nil
}
